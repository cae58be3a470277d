// Package segmentation implements lung extraction from a single 2D chest CT
// slice. The algorithm is a three-pass raster scan over one label grid:
//
//  1. Threshold every pixel into Air or Tissue, bridging short tissue gaps
//     inside air runs so thin structures (blood vessels, the patient bed)
//     do not fragment the air region.
//  2. Per row, find the label-change edges and flood everything outside the
//     first/last edge as NonBody, separating background air from air
//     enclosed by the body silhouette.
//  3. Count the surviving Air pixels and relabel them Lung.
//
// The pixel count times the in-plane voxel area gives the physical lung
// area. Each pass only ever reads and writes within a single row, so rows
// are processed in parallel across worker goroutines with a barrier
// between passes.
package segmentation

import (
	"fmt"
	"runtime"
	"sync"

	"lungseg/internal/models"
)

// DefaultThreshold is the intensity level separating air from tissue on a
// normalized 0-255 slice. Empirically, values above ~90 cover the body in
// spikes and values below ~30 misclassify lung area as tissue.
const DefaultThreshold = 40

// DefaultJumpSize is the widest tissue gap, in pixels, that the classify
// pass bridges between two air pixels in the same row. Useful values lie
// strictly between 10 and 25.
const DefaultJumpSize = 15

// Bounds outside which the tunables are rejected rather than silently
// degrading the segmentation.
const (
	minThreshold = 30
	maxThreshold = 90
	minJumpSize  = 10
	maxJumpSize  = 25
)

// Params holds the segmentation tunables. Both values are per-call
// parameters rather than process-wide state so they can be calibrated per
// scanner or protocol.
type Params struct {
	// Threshold is the air/tissue intensity cutoff on the normalized
	// 0-255 scale; pixels strictly below it are air
	Threshold int

	// JumpSize is the exclusive upper bound on the width of a tissue gap
	// bridged between two same-row air pixels
	JumpSize int

	// NumCores is the number of worker goroutines used for the row
	// passes; zero or negative selects runtime.NumCPU()
	NumCores int
}

// DefaultParams returns the empirically tuned default parameters.
func DefaultParams() Params {
	return Params{
		Threshold: DefaultThreshold,
		JumpSize:  DefaultJumpSize,
		NumCores:  runtime.NumCPU(),
	}
}

// Validate rejects parameter values outside the ranges for which the
// segmentation behavior is characterized. This is a configuration error
// surfaced before any computation, not a silent degradation.
func (p Params) Validate() error {
	if p.Threshold < minThreshold || p.Threshold > maxThreshold {
		return fmt.Errorf("threshold %d outside valid range [%d, %d]",
			p.Threshold, minThreshold, maxThreshold)
	}
	if p.JumpSize <= minJumpSize || p.JumpSize >= maxJumpSize {
		return fmt.Errorf("jump size %d outside valid range (%d, %d)",
			p.JumpSize, minJumpSize, maxJumpSize)
	}
	return nil
}

// Result is the immutable outcome of segmenting one slice.
type Result struct {
	// Normalized is the 8-bit slice the engine classified, row-major,
	// unmodified by the passes; callers render it as the "original"
	// image for side-by-side comparison
	Normalized []uint8

	// Labels is the final classification grid; every cell holds exactly
	// one of Tissue, NonBody or Lung
	Labels *Grid

	// LungPixels is the number of cells classified as Lung
	LungPixels int

	// AreaMM2 is the physical lung area: LungPixels times the product of
	// the two in-plane voxel spacings
	AreaMM2 float64

	// Stats summarizes the intensity distribution of the lung region
	Stats IntensityStats
}

// Segmenter runs the segmentation pipeline for a fixed set of parameters.
type Segmenter struct {
	params Params
}

// NewSegmenter creates a segmenter after validating the parameters.
func NewSegmenter(params Params) (*Segmenter, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.NumCores <= 0 {
		params.NumCores = runtime.NumCPU()
	}
	return &Segmenter{params: params}, nil
}

// Segment runs the full pipeline on one slice: normalize, classify,
// separate interior from exterior air, count, and convert to physical
// area using the slice's in-plane voxel spacing.
func (s *Segmenter) Segment(slice *models.Slice) (*Result, error) {
	if slice.Width <= 0 || slice.Height <= 0 {
		return nil, fmt.Errorf("degenerate slice dimensions %dx%d", slice.Width, slice.Height)
	}
	if len(slice.Data) != slice.Width*slice.Height {
		return nil, fmt.Errorf("slice data length %d does not match %dx%d",
			len(slice.Data), slice.Width, slice.Height)
	}

	normalized := Normalize(slice.Data)
	grid := NewGrid(slice.Width, slice.Height)

	// Each pass finishes on all rows before the next starts: the
	// separation pass must see the fully classified grid, and the count
	// pass must see the fully separated one.
	s.forEachRow(grid.height, func(y int) {
		classifyRow(grid.Row(y), normalized[y*grid.width:(y+1)*grid.width], s.params)
	})
	s.forEachRow(grid.height, func(y int) {
		separateRow(grid.Row(y))
	})

	count := s.countAndRecolor(grid)
	area := PixelArea(slice.Spacing) * float64(count)

	return &Result{
		Normalized: normalized,
		Labels:     grid,
		LungPixels: count,
		AreaMM2:    area,
		Stats:      lungStats(normalized, grid),
	}, nil
}

// forEachRow partitions the rows across the configured number of workers.
// Row work never reads or writes outside its own row, so the only
// synchronization needed is the join, which doubles as the inter-pass
// barrier.
func (s *Segmenter) forEachRow(height int, work func(y int)) {
	workers := s.params.NumCores
	if workers > height {
		workers = height
	}
	if workers <= 1 {
		for y := 0; y < height; y++ {
			work(y)
		}
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (height + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > height {
			end = height
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for y := start; y < end; y++ {
				work(y)
			}
		}(start, end)
	}
	wg.Wait()
}

// classifyRow assigns Air or Tissue to every pixel of one row and bridges
// short gaps between air pixels.
//
// A pixel strictly below the threshold is Air, anything else Tissue. The
// row keeps a marker at the most recent Air pixel; when a new Air pixel
// lands within jumpSize columns of the marker, every pixel strictly
// between them is relabeled Air. The marker then moves to the current
// pixel, not the filled range, so a fill can only bridge forward from a
// literal air detection. Gap fill never crosses row boundaries.
func classifyRow(row []Label, intensities []uint8, params Params) {
	threshold := uint8(params.Threshold)
	lastAir := -1

	for x := range row {
		if intensities[x] < threshold {
			row[x] = Air
			if lastAir >= 0 && x-lastAir < params.JumpSize {
				for i := lastAir + 1; i < x; i++ {
					row[i] = Air
				}
			}
			lastAir = x
		} else {
			row[x] = Tissue
		}
	}
}

// separateRow distinguishes exterior air from body-interior air in one
// already classified row.
//
// The row's edges are the columns whose label differs from the previous
// column; column 0 is never an edge. Trailing tissue runs at the row's end
// produce one spurious edge, so if the last edge sits on a Tissue column
// that single edge is dropped. A toggle-fill sweep then runs across the
// row: filling starts on, turns off at the first edge and back on at the
// last edge, and every column visited while filling is forced to NonBody.
// A row with no edges is entirely outside the body and fills completely.
func separateRow(row []Label) {
	edges := rowEdges(row)

	fill := true
	for x := range row {
		if len(edges) > 0 {
			if x == edges[0] {
				fill = false
			}
			if x == edges[len(edges)-1] {
				fill = true
			}
		}
		if fill {
			row[x] = NonBody
		}
	}
}

// rowEdges returns the columns where the row's label changes from the
// previous column, with the single trailing fake edge removed.
func rowEdges(row []Label) []int {
	var edges []int
	for x := 1; x < len(row); x++ {
		if row[x] != row[x-1] {
			edges = append(edges, x)
		}
	}

	// Only the one trailing artifact is dropped; multiple stacked fakes
	// are left alone.
	if len(edges) > 0 && row[edges[len(edges)-1]] == Tissue {
		edges = edges[:len(edges)-1]
	}
	return edges
}

// countAndRecolor counts the Air cells that survived the separation pass
// and relabels them Lung. By elimination these are exactly the air pixels
// enclosed by the body silhouette.
func (s *Segmenter) countAndRecolor(grid *Grid) int {
	counts := make([]int, grid.height)
	s.forEachRow(grid.height, func(y int) {
		row := grid.Row(y)
		for x := range row {
			if row[x] == Air {
				row[x] = Lung
				counts[y]++
			}
		}
	})

	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

// PixelArea returns the physical area of one pixel: the product of the
// two in-plane voxel spacings. The unit follows the header's spacing
// unit, typically mm, yielding mm² areas.
func PixelArea(spacing models.Spacing) float64 {
	return spacing.X * spacing.Y
}
