package watermark

import (
	"fmt"
	"image"
	"image/color"
)

// Ink is an 8-bit RGB colour expressed as floats in [0, 255]. It names both
// the overlay's full-opacity colour and the flat background the reference
// assets were captured on.
type Ink struct {
	R, G, B float64
}

var (
	// White is the overlay colour used by the upstream generator.
	White = Ink{R: 255, G: 255, B: 255}
	// Black is the background the reference assets were captured on.
	Black = Ink{}
)

// InkFromColor converts any color.Color to an Ink, ignoring its alpha.
func InkFromColor(c color.Color) Ink {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Ink{R: float64(n.R), G: float64(n.G), B: float64(n.B)}
}

func (i Ink) channel(c int) float64 {
	switch c {
	case 0:
		return i.R
	case 1:
		return i.G
	default:
		return i.B
	}
}

// Coverage holds the per-channel overlay coverage of a single pixel. Indexes
// 0-2 are red, green and blue; index 3 is the combined coverage, the maximum
// of the three, used where a single scalar is needed.
type Coverage [4]float32

// Combined returns the scalar coverage of the pixel.
func (c Coverage) Combined() float32 {
	return c[3]
}

// AlphaMap is an immutable size x size grid of coverage values derived from a
// reference overlay raster.
type AlphaMap struct {
	size  int
	cells []Coverage
}

// Size returns the overlay size the map was derived for.
func (m *AlphaMap) Size() int {
	return m.size
}

// At returns the coverage of the cell at (x, y), with (0, 0) the top-left
// corner of the overlay. Out of range cells have zero coverage.
func (m *AlphaMap) At(x, y int) Coverage {
	if x < 0 || y < 0 || x >= m.size || y >= m.size {
		return Coverage{}
	}
	return m.cells[y*m.size+x]
}

// CombinedValues returns the combined coverage of every cell in row-major
// order. The slice is a copy.
func (m *AlphaMap) CombinedValues() []float64 {
	out := make([]float64, len(m.cells))
	for i, c := range m.cells {
		out[i] = float64(c.Combined())
	}
	return out
}

// NewAlphaMap builds a map from row-major coverage cells. It is mainly useful
// for synthetic maps; production maps come from DeriveAlphaMap.
func NewAlphaMap(size int, cells []Coverage) (*AlphaMap, error) {
	if size <= 0 || len(cells) != size*size {
		return nil, fmt.Errorf("%w: have %d cells, want %dx%d", ErrShapeMismatch, len(cells), size, size)
	}

	owned := make([]Coverage, len(cells))
	copy(owned, cells)
	return &AlphaMap{size: size, cells: owned}, nil
}

// DeriveAlphaMap recovers the overlay coverage from a reference raster showing
// the overlay over the flat background bg. For every pixel and colour channel
// it solves observed = c*ink + (1-c)*bg for c and clamps the result to [0, 1].
// Channels where ink equals bg carry no information and get zero coverage.
func DeriveAlphaMap(ref image.Image, size int, bg, ink Ink) (*AlphaMap, error) {
	if ref == nil {
		return nil, fmt.Errorf("%w: nil reference for size %d", ErrShapeMismatch, size)
	}

	bounds := ref.Bounds()
	if bounds.Dx() != size || bounds.Dy() != size {
		return nil, fmt.Errorf("%w: reference is %dx%d, want %dx%d",
			ErrShapeMismatch, bounds.Dx(), bounds.Dy(), size, size)
	}

	cells := make([]Coverage, size*size)

	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := ref.At(x, y).RGBA()
			observed := [3]float64{float64(r) / 257.0, float64(g) / 257.0, float64(b) / 257.0}

			var cell Coverage
			for c := 0; c < 3; c++ {
				cell[c] = float32(solveCoverage(observed[c], bg.channel(c), ink.channel(c)))
				if cell[c] > cell[3] {
					cell[3] = cell[c]
				}
			}

			cells[idx] = cell
			idx++
		}
	}

	return &AlphaMap{size: size, cells: cells}, nil
}

func solveCoverage(observed, bg, ink float64) float64 {
	span := ink - bg
	if span == 0 {
		return 0
	}
	return clamp01((observed - bg) / span)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
