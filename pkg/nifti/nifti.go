// Package nifti loads volumetric CT scans stored in the NIfTI-1 container
// format, either uncompressed (.nii) or gzip-compressed (.nii.gz).
// It parses the 348-byte header, decodes the voxel data into float64 values
// and exposes the physical voxel spacing needed for area measurements.
package nifti

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"lungseg/internal/models"
)

// Sentinel errors for the distinct load failure kinds. Callers can use
// errors.Is to distinguish a missing or corrupt file from an unsupported
// but well-formed one.
var (
	// ErrNotNIfTI indicates the file is not a recognized NIfTI-1 container
	ErrNotNIfTI = errors.New("not a NIfTI-1 file")

	// ErrTruncated indicates the header or voxel data ended prematurely
	ErrTruncated = errors.New("truncated NIfTI file")

	// ErrUnsupportedType indicates a datatype code this loader does not decode
	ErrUnsupportedType = errors.New("unsupported NIfTI datatype")

	// ErrBadDimensions indicates a dimensionality the pipeline cannot use
	ErrBadDimensions = errors.New("bad NIfTI dimensions")

	// ErrBadSpacing indicates a non-positive in-plane voxel spacing,
	// which would make every area measurement meaningless
	ErrBadSpacing = errors.New("bad NIfTI voxel spacing")
)

// NIfTI-1 datatype codes as defined in the standard header
const (
	typeUint8   = 2
	typeInt16   = 4
	typeInt32   = 8
	typeFloat32 = 16
	typeFloat64 = 64
	typeUint16  = 512
)

const headerSize = 348

// header mirrors the subset of the NIfTI-1 header this loader needs.
// Field offsets follow the standard layout: dim at byte 40, datatype at 70,
// pixdim at 76, vox_offset at 108, scl_slope/scl_inter at 112/116,
// magic at 344.
type header struct {
	dim       [8]int16
	datatype  int16
	bitpix    int16
	pixdim    [8]float32
	voxOffset float32
	sclSlope  float32
	sclInter  float32
	magic     [4]byte
}

// Load reads a NIfTI-1 volume from path. Gzip compression is detected by
// the .gz suffix or by the gzip magic bytes, so a mislabeled file still
// loads. Any failure aborts the load with no partial result.
func Load(path string) (*models.Volume, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scan file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), ".gz") || hasGzipMagic(file) {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return decode(r)
}

// hasGzipMagic peeks at the first two bytes of the file and rewinds.
func hasGzipMagic(f *os.File) bool {
	var magic [2]byte
	_, err := io.ReadFull(f, magic[:])
	f.Seek(0, io.SeekStart)
	return err == nil && magic[0] == 0x1f && magic[1] == 0x8b
}

// decode parses a complete NIfTI-1 stream: header, then voxel data at
// vox_offset.
func decode(r io.Reader) (*models.Volume, error) {
	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("reading header: %w", ErrTruncated)
	}

	hdr, order, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}

	ndim := int(hdr.dim[0])
	if ndim < 2 || ndim > 7 {
		return nil, fmt.Errorf("%w: dim[0]=%d", ErrBadDimensions, ndim)
	}

	width := int(hdr.dim[1])
	height := int(hdr.dim[2])
	depth := 1
	if ndim >= 3 {
		depth = int(hdr.dim[3])
	}
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrBadDimensions, width, height, depth)
	}

	// The area converter multiplies the two in-plane spacings, so both
	// must be positive physical distances
	if hdr.pixdim[1] <= 0 || hdr.pixdim[2] <= 0 {
		return nil, fmt.Errorf("%w: in-plane pixdim %f x %f",
			ErrBadSpacing, hdr.pixdim[1], hdr.pixdim[2])
	}

	// Skip any extension bytes between the header and the voxel data
	offset := int64(hdr.voxOffset)
	if offset < headerSize {
		offset = headerSize
	}
	if _, err := io.CopyN(io.Discard, r, offset-headerSize); err != nil {
		return nil, fmt.Errorf("seeking to voxel data: %w", ErrTruncated)
	}

	data, err := readVoxels(r, hdr, order, width*height*depth)
	if err != nil {
		return nil, err
	}

	vol := &models.Volume{
		Data:   data,
		Width:  width,
		Height: height,
		Depth:  depth,
		Spacing: models.Spacing{
			X: float64(hdr.pixdim[1]),
			Y: float64(hdr.pixdim[2]),
			Z: float64(hdr.pixdim[3]),
		},
	}
	return vol, nil
}

// parseHeader decodes the fixed 348-byte header, determining byte order
// from the sizeof_hdr field. Both the "n+1" (single file) and "ni1"
// (header/data pair) magic values are accepted.
func parseHeader(raw []byte) (*header, binary.ByteOrder, error) {
	var order binary.ByteOrder = binary.LittleEndian
	if binary.LittleEndian.Uint32(raw[0:4]) != headerSize {
		if binary.BigEndian.Uint32(raw[0:4]) != headerSize {
			return nil, nil, fmt.Errorf("%w: sizeof_hdr mismatch", ErrNotNIfTI)
		}
		order = binary.BigEndian
	}

	hdr := &header{}
	for i := 0; i < 8; i++ {
		hdr.dim[i] = int16(order.Uint16(raw[40+2*i : 42+2*i]))
		hdr.pixdim[i] = math.Float32frombits(order.Uint32(raw[76+4*i : 80+4*i]))
	}
	hdr.datatype = int16(order.Uint16(raw[70:72]))
	hdr.bitpix = int16(order.Uint16(raw[72:74]))
	hdr.voxOffset = math.Float32frombits(order.Uint32(raw[108:112]))
	hdr.sclSlope = math.Float32frombits(order.Uint32(raw[112:116]))
	hdr.sclInter = math.Float32frombits(order.Uint32(raw[116:120]))
	copy(hdr.magic[:], raw[344:348])

	magic := string(hdr.magic[:3])
	if magic != "n+1" && magic != "ni1" {
		return nil, nil, fmt.Errorf("%w: magic %q", ErrNotNIfTI, magic)
	}

	return hdr, order, nil
}

// readVoxels decodes count voxels of the header's datatype into float64,
// applying the scl_slope/scl_inter rescaling when the slope is nonzero.
func readVoxels(r io.Reader, hdr *header, order binary.ByteOrder, count int) ([]float64, error) {
	bytesPer := typeSize(hdr.datatype)
	if bytesPer <= 0 {
		return nil, fmt.Errorf("%w: code %d", ErrUnsupportedType, hdr.datatype)
	}

	// A bitpix disagreeing with the datatype width means the header is
	// corrupt; decoding the data either way would misread every voxel
	if int(hdr.bitpix) != bytesPer*8 {
		return nil, fmt.Errorf("%w: bitpix %d does not match datatype %d",
			ErrNotNIfTI, hdr.bitpix, hdr.datatype)
	}

	raw := make([]byte, count*bytesPer)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("reading voxel data: %w", ErrTruncated)
	}

	data := make([]float64, count)
	switch hdr.datatype {
	case typeUint8:
		for i := 0; i < count; i++ {
			data[i] = float64(raw[i])
		}
	case typeInt16:
		for i := 0; i < count; i++ {
			data[i] = float64(int16(order.Uint16(raw[2*i : 2*i+2])))
		}
	case typeUint16:
		for i := 0; i < count; i++ {
			data[i] = float64(order.Uint16(raw[2*i : 2*i+2]))
		}
	case typeInt32:
		for i := 0; i < count; i++ {
			data[i] = float64(int32(order.Uint32(raw[4*i : 4*i+4])))
		}
	case typeFloat32:
		for i := 0; i < count; i++ {
			data[i] = float64(math.Float32frombits(order.Uint32(raw[4*i : 4*i+4])))
		}
	case typeFloat64:
		for i := 0; i < count; i++ {
			data[i] = math.Float64frombits(order.Uint64(raw[8*i : 8*i+8]))
		}
	default:
		return nil, fmt.Errorf("%w: code %d", ErrUnsupportedType, hdr.datatype)
	}

	// scl_slope == 0 means "no rescale" per the NIfTI-1 standard
	if hdr.sclSlope != 0 && !(hdr.sclSlope == 1 && hdr.sclInter == 0) {
		slope := float64(hdr.sclSlope)
		inter := float64(hdr.sclInter)
		for i := range data {
			data[i] = data[i]*slope + inter
		}
	}

	return data, nil
}

// typeSize returns the voxel size in bytes for a datatype code, or 0 if
// the code is not supported.
func typeSize(datatype int16) int {
	switch datatype {
	case typeUint8:
		return 1
	case typeInt16, typeUint16:
		return 2
	case typeInt32, typeFloat32:
		return 4
	case typeFloat64:
		return 8
	}
	return 0
}

// ExtractSlice copies axial slice z out of the volume along with the
// in-plane voxel spacing the area converter needs.
func ExtractSlice(vol *models.Volume, z int) (*models.Slice, error) {
	if z < 0 || z >= vol.Depth {
		return nil, fmt.Errorf("slice index %d out of range [0, %d)", z, vol.Depth)
	}

	n := vol.Width * vol.Height
	data := make([]float64, n)
	copy(data, vol.Data[z*n:(z+1)*n])

	return &models.Slice{
		Data:    data,
		Width:   vol.Width,
		Height:  vol.Height,
		Index:   z,
		Spacing: vol.Spacing,
	}, nil
}
