package segmentation

import (
	"gonum.org/v1/gonum/stat"
)

// IntensityStats summarizes the normalized intensity distribution of the
// segmented lung region. The numbers are diagnostic: a mean drifting
// toward the threshold usually means the cutoff needs recalibration for
// the scanner or protocol.
type IntensityStats struct {
	// Mean is the average normalized intensity of lung pixels
	Mean float64

	// StdDev is the standard deviation of lung pixel intensities;
	// zero when fewer than two lung pixels exist
	StdDev float64

	// Min and Max bound the lung pixel intensities
	Min uint8
	Max uint8
}

// lungStats gathers the normalized intensities of all Lung cells and
// computes their summary statistics.
func lungStats(normalized []uint8, grid *Grid) IntensityStats {
	var values []float64
	var stats IntensityStats

	first := true
	for y := 0; y < grid.height; y++ {
		row := grid.Row(y)
		for x := range row {
			if row[x] != Lung {
				continue
			}
			v := normalized[y*grid.width+x]
			values = append(values, float64(v))
			if first || v < stats.Min {
				stats.Min = v
			}
			if first || v > stats.Max {
				stats.Max = v
			}
			first = false
		}
	}

	if len(values) == 0 {
		return IntensityStats{}
	}

	stats.Mean = stat.Mean(values, nil)
	if len(values) > 1 {
		stats.StdDev = stat.StdDev(values, nil)
	}
	return stats
}
