package watermark

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
	"testing/fstest"
)

// coneCoverage is the synthetic overlay used throughout the tests: a cone
// peaking at 0.5 in the centre of the overlay square.
func coneCoverage(size, x, y int) float64 {
	r := float64(size) / 2
	dx := float64(x) + 0.5 - r
	dy := float64(y) + 0.5 - r
	d := math.Sqrt(dx*dx + dy*dy)
	if d >= r {
		return 0
	}
	return 0.5 * (1 - d/r)
}

// referenceImage renders the cone overlay in white over black.
func referenceImage(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := uint8(math.Round(coneCoverage(size, x, y) * 255))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testAssets(t *testing.T) fstest.MapFS {
	t.Helper()
	return fstest.MapFS{
		"bg_48.png": &fstest.MapFile{Data: encodePNG(t, referenceImage(SmallSize))},
		"bg_96.png": &fstest.MapFile{Data: encodePNG(t, referenceImage(LargeSize))},
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(context.Background(), testAssets(t), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func uniformImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// gradientImage has a distinct value for most pixels so misplaced writes show.
func gradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 7 % 200),
				G: uint8(y * 5 % 200),
				B: uint8((x + y) % 200),
				A: 255,
			})
		}
	}
	return img
}

// composite blends the white cone overlay onto img at p, the way the
// upstream generator does.
func composite(img *image.NRGBA, p Placement) {
	for y := 0; y < p.Size; y++ {
		for x := 0; x < p.Size; x++ {
			px, py := p.OffsetX+x, p.OffsetY+y
			if !(image.Point{X: px, Y: py}).In(img.Bounds()) {
				continue
			}
			c := coneCoverage(p.Size, x, y)
			off := img.PixOffset(px, py)
			for ch := 0; ch < 3; ch++ {
				b := float64(img.Pix[off+ch])
				img.Pix[off+ch] = uint8(math.Round(c*255 + (1-c)*b))
			}
		}
	}
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// maxChannelDiff returns the largest colour channel difference inside rect.
func maxChannelDiff(a, b *image.NRGBA, rect image.Rectangle) int {
	worst := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			oa, ob := a.PixOffset(x, y), b.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				d := int(a.Pix[oa+ch]) - int(b.Pix[ob+ch])
				if d < 0 {
					d = -d
				}
				if d > worst {
					worst = d
				}
			}
		}
	}
	return worst
}

// sameOutside reports whether a and b are bit-identical outside rect.
func sameOutside(a, b *image.NRGBA, rect image.Rectangle) bool {
	bounds := a.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if (image.Point{X: x, Y: y}).In(rect) {
				continue
			}
			oa, ob := a.PixOffset(x, y), b.PixOffset(x, y)
			if !bytes.Equal(a.Pix[oa:oa+4], b.Pix[ob:ob+4]) {
				return false
			}
		}
	}
	return true
}
