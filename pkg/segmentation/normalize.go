package segmentation

import (
	"gonum.org/v1/gonum/floats"
)

// Normalize rescales raw scan intensities linearly into the 8-bit range:
// the minimum raw value maps to 0 and the maximum to 255. A flat image
// (max == min) would divide by zero, so every pixel maps to 0 instead.
//
// The returned slice is a new array; the raw input is never modified.
func Normalize(raw []float64) []uint8 {
	out := make([]uint8, len(raw))
	if len(raw) == 0 {
		return out
	}

	min := floats.Min(raw)
	max := floats.Max(raw)
	if max == min {
		return out
	}

	scale := 255.0 / (max - min)
	for i, v := range raw {
		out[i] = uint8((v - min) * scale)
	}
	return out
}
