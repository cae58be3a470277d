package models

// Spacing holds the physical size of a voxel along each axis in mm,
// as read from the scan's header metadata.
type Spacing struct {
	X, Y, Z float64
}

// Slice represents a single 2D cross-section extracted from a CT volume.
type Slice struct {
	// Data holds the raw scalar intensities in row-major order
	// (index = y*Width + x).
	Data []float64

	// Width and Height are the in-plane dimensions in pixels
	Width  int
	Height int

	// Index is the position of this slice along the scan axis
	Index int

	// Spacing is the physical voxel size; only X and Y are in-plane
	// and relevant to area computation
	Spacing Spacing
}

// At returns the raw intensity at pixel (x, y).
func (s *Slice) At(x, y int) float64 {
	return s.Data[y*s.Width+x]
}

// Volume represents a 3D CT scan loaded from a volumetric image file.
type Volume struct {
	// Data is the voxel data as a 1D array, x varying fastest
	// (index = z*Width*Height + y*Width + x)
	Data []float64

	// Width, Height, Depth are the volume dimensions in voxels
	Width  int
	Height int
	Depth  int

	// Spacing is the physical voxel size in mm per axis
	Spacing Spacing
}

// NumSlices returns the number of axial slices in the volume.
func (v *Volume) NumSlices() int {
	return v.Depth
}
