package segmentation

import (
	"math"
	"testing"
)

// TestLungStats verifies the intensity summary over a hand-built grid
func TestLungStats(t *testing.T) {
	grid := NewGrid(3, 2)
	normalized := []uint8{10, 20, 30, 40, 50, 60}

	// Lung pixels at intensities 20, 30 and 40
	grid.Set(1, 0, Lung)
	grid.Set(2, 0, Lung)
	grid.Set(0, 1, Lung)
	grid.Set(0, 0, NonBody)
	grid.Set(1, 1, Tissue)
	grid.Set(2, 1, NonBody)

	stats := lungStats(normalized, grid)

	if stats.Mean != 30.0 {
		t.Errorf("Expected mean 30.0, got %f", stats.Mean)
	}
	if math.Abs(stats.StdDev-10.0) > 1e-9 {
		t.Errorf("Expected stddev 10.0, got %f", stats.StdDev)
	}
	if stats.Min != 20 {
		t.Errorf("Expected min 20, got %d", stats.Min)
	}
	if stats.Max != 40 {
		t.Errorf("Expected max 40, got %d", stats.Max)
	}
}

// TestLungStatsNoLung verifies the zero value is returned when the grid
// contains no lung pixels
func TestLungStatsNoLung(t *testing.T) {
	grid := NewGrid(2, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			grid.Set(x, y, NonBody)
		}
	}

	stats := lungStats([]uint8{1, 2, 3, 4}, grid)
	if stats.Mean != 0 || stats.StdDev != 0 || stats.Min != 0 || stats.Max != 0 {
		t.Errorf("Expected zero stats for lungless grid, got %+v", stats)
	}
}

// TestGridCount verifies the label counting helper
func TestGridCount(t *testing.T) {
	grid := NewGrid(4, 1)
	grid.Set(0, 0, Lung)
	grid.Set(1, 0, Lung)
	grid.Set(2, 0, Tissue)

	if got := grid.Count(Lung); got != 2 {
		t.Errorf("Expected 2 lung cells, got %d", got)
	}
	if got := grid.Count(Unclassified); got != 1 {
		t.Errorf("Expected 1 unclassified cell, got %d", got)
	}
}
