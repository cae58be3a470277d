package segmentation

import (
	"testing"
)

// TestNormalizeLinearMapping verifies that the minimum raw value maps to
// 0, the maximum to 255, and intermediate values scale linearly
func TestNormalizeLinearMapping(t *testing.T) {
	raw := []float64{-1000, 0, 1000}
	out := Normalize(raw)

	if out[0] != 0 {
		t.Errorf("Expected minimum to map to 0, got %d", out[0])
	}
	if out[1] != 127 {
		t.Errorf("Expected midpoint to map to 127, got %d", out[1])
	}
	if out[2] != 255 {
		t.Errorf("Expected maximum to map to 255, got %d", out[2])
	}
}

// TestNormalizeFlatImage verifies the degenerate-range fallback: a flat
// image maps every pixel to 0 instead of dividing by zero
func TestNormalizeFlatImage(t *testing.T) {
	raw := []float64{42.5, 42.5, 42.5, 42.5}
	out := Normalize(raw)

	for i, v := range out {
		if v != 0 {
			t.Errorf("Expected flat image pixel %d to map to 0, got %d", i, v)
		}
	}
}

// TestNormalizeEmpty verifies that an empty input yields an empty output
func TestNormalizeEmpty(t *testing.T) {
	if out := Normalize(nil); len(out) != 0 {
		t.Errorf("Expected empty output, got length %d", len(out))
	}
}

// TestNormalizeDoesNotModifyInput verifies the raw data survives intact
// for the side-by-side original rendering
func TestNormalizeDoesNotModifyInput(t *testing.T) {
	raw := []float64{3, 1, 2}
	Normalize(raw)

	expected := []float64{3, 1, 2}
	for i, want := range expected {
		if raw[i] != want {
			t.Errorf("Expected raw[%d] to stay %f, got %f", i, want, raw[i])
		}
	}
}
