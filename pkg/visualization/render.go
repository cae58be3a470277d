// Package visualization renders segmentation results as images: a
// grayscale rendering of the normalized slice and a colorized rendering
// of the label grid. The four category colors are a presentation detail
// kept out of the segmentation core.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"lungseg/pkg/segmentation"
)

// Palette maps each pixel category to its display color. The zero value
// is unusable; build palettes with DefaultPalette or ParsePalette so the
// distinctness invariant holds.
type Palette struct {
	Air     color.RGBA
	Tissue  color.RGBA
	NonBody color.RGBA
	Lung    color.RGBA
}

// Default display colors. Air is bright red but absent from final
// renders, since the count pass relabels every surviving air pixel.
const (
	DefaultAirHex     = "#FF0000"
	DefaultTissueHex  = "#C85050"
	DefaultNonBodyHex = "#3C3C3C"
	DefaultLungHex    = "#A0A0F0"
)

// DefaultPalette returns the standard display colors.
func DefaultPalette() Palette {
	p, err := ParsePalette(DefaultAirHex, DefaultTissueHex, DefaultNonBodyHex, DefaultLungHex)
	if err != nil {
		// The defaults are constants; a parse failure is a programming error
		panic(err)
	}
	return p
}

// ParsePalette builds a palette from four "#RRGGBB" hex strings. The four
// colors must be pairwise distinct so every category stays visually and
// programmatically distinguishable.
func ParsePalette(airHex, tissueHex, nonBodyHex, lungHex string) (Palette, error) {
	var p Palette
	hexes := []string{airHex, tissueHex, nonBodyHex, lungHex}
	targets := []*color.RGBA{&p.Air, &p.Tissue, &p.NonBody, &p.Lung}
	names := []string{"air", "tissue", "nonBody", "lung"}

	for i, hex := range hexes {
		c, err := colorful.Hex(hex)
		if err != nil {
			return Palette{}, fmt.Errorf("invalid %s color %q: %w", names[i], hex, err)
		}
		r, g, b := c.RGB255()
		*targets[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}

	for i := range hexes {
		for j := i + 1; j < len(hexes); j++ {
			if *targets[i] == *targets[j] {
				return Palette{}, fmt.Errorf("%s and %s colors must differ, both are %q",
					names[i], names[j], hexes[i])
			}
		}
	}

	return p, nil
}

// colorFor returns the display color for a label. Unclassified never
// appears in a completed grid; it renders black so a pipeline bug is
// visible rather than masked.
func (p Palette) colorFor(l segmentation.Label) color.RGBA {
	switch l {
	case segmentation.Air:
		return p.Air
	case segmentation.Tissue:
		return p.Tissue
	case segmentation.NonBody:
		return p.NonBody
	case segmentation.Lung:
		return p.Lung
	}
	return color.RGBA{A: 255}
}

// Colorize renders a label grid with the palette's category colors.
func Colorize(grid *segmentation.Grid, palette Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, grid.Width(), grid.Height()))
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			img.SetRGBA(x, y, palette.colorFor(grid.At(x, y)))
		}
	}
	return img
}

// RenderGray converts a normalized 8-bit slice into a grayscale RGBA
// image, the unmodified "original" shown next to the segmentation.
func RenderGray(normalized []uint8, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := normalized[y*width+x]
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// Save writes an image to path, creating parent directories as needed.
// The encoding format follows the file extension.
func Save(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("saving image %s: %w", path, err)
	}
	return nil
}
