package segmentation

// Label is the classification assigned to a single pixel. The pipeline
// moves every pixel through an explicit sequence of label sets:
// Unclassified -> {Air, Tissue} -> {Air, Tissue, NonBody} ->
// {Tissue, NonBody, Lung}. Air never survives the final pass.
type Label uint8

const (
	// Unclassified is the initial state before the threshold pass
	Unclassified Label = iota

	// Air marks a pixel below the intensity threshold; after the
	// separation pass only body-interior air keeps this label
	Air

	// Tissue marks a pixel at or above the intensity threshold
	Tissue

	// NonBody marks a pixel outside the body silhouette, regardless of
	// its original intensity class
	NonBody

	// Lung marks interior air surviving all passes: the segmented lung
	Lung
)

// String returns the label name for diagnostics and test output.
func (l Label) String() string {
	switch l {
	case Unclassified:
		return "Unclassified"
	case Air:
		return "Air"
	case Tissue:
		return "Tissue"
	case NonBody:
		return "NonBody"
	case Lung:
		return "Lung"
	}
	return "Unknown"
}

// Grid is a dense 2D field of pixel labels, row-major.
type Grid struct {
	labels []Label
	width  int
	height int
}

// NewGrid creates a width x height grid with every cell Unclassified.
func NewGrid(width, height int) *Grid {
	return &Grid{
		labels: make([]Label, width*height),
		width:  width,
		height: height,
	}
}

// Width returns the grid width in pixels.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in pixels.
func (g *Grid) Height() int { return g.height }

// At returns the label at (x, y).
func (g *Grid) At(x, y int) Label {
	return g.labels[y*g.width+x]
}

// Set assigns the label at (x, y).
func (g *Grid) Set(x, y int, l Label) {
	g.labels[y*g.width+x] = l
}

// Row returns the labels of row y as a slice aliasing the grid storage.
// Writing through it writes the grid; rows never overlap, so per-row
// workers can hold their own row slices without synchronization.
func (g *Grid) Row(y int) []Label {
	return g.labels[y*g.width : (y+1)*g.width]
}

// Count returns the number of cells currently holding label l.
func (g *Grid) Count(l Label) int {
	n := 0
	for _, v := range g.labels {
		if v == l {
			n++
		}
	}
	return n
}
