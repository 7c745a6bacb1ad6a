package watermark

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestInvertZeroCoverageIsNoop(t *testing.T) {
	img := gradientImage(200, 150)
	before := cloneNRGBA(img)

	p := Resolve(200, 150)
	Invert(img, constantMap(t, p.Size, 0), p, White)

	if !bytes.Equal(img.Pix, before.Pix) {
		t.Fatalf("zero coverage map modified the image")
	}
}

func TestUnblendRoundTrip(t *testing.T) {
	inks := []float64{255, 200, 0}
	for _, ink := range inks {
		for b := 0; b <= 255; b += 15 {
			for c := 0.0; c <= 0.99; c += 0.01 {
				observed := c*ink + (1-c)*float64(b)
				got := int(clampChannel(unblend(observed, c, ink)))
				if d := got - b; d < -1 || d > 1 {
					t.Fatalf("ink=%v b=%d c=%.2f: restored %d", ink, b, c, got)
				}
			}
		}
	}
}

func TestInvertRoundTripQuantized(t *testing.T) {
	// Quantizing the composite to 8 bits amplifies by 1/(1-c); up to c=0.5
	// the error stays within one level.
	for _, c := range []float32{0.01, 0.1, 0.25, 0.4, 0.5} {
		for b := 0; b <= 255; b += 17 {
			img := uniformImage(100, 100, color.NRGBA{R: uint8(b), G: uint8(b), B: uint8(b), A: 255})
			p := Resolve(100, 100)
			observed := uint8(math.Round(float64(c)*255 + (1-float64(c))*float64(b)))
			rect := p.Rect()
			for y := rect.Min.Y; y < rect.Max.Y; y++ {
				for x := rect.Min.X; x < rect.Max.X; x++ {
					img.SetNRGBA(x, y, color.NRGBA{R: observed, G: observed, B: observed, A: 255})
				}
			}

			Invert(img, constantMap(t, p.Size, c), p, White)

			got := int(img.NRGBAAt(rect.Min.X, rect.Min.Y).R)
			if d := got - b; d < -1 || d > 1 {
				t.Fatalf("c=%.2f b=%d: restored %d", c, b, got)
			}
		}
	}
}

func TestInvertFullCoverageLeavesPixel(t *testing.T) {
	img := uniformImage(100, 100, color.NRGBA{R: 255, G: 250, B: 240, A: 255})
	before := cloneNRGBA(img)
	p := Resolve(100, 100)

	Invert(img, constantMap(t, p.Size, 1), p, White)

	if !bytes.Equal(img.Pix, before.Pix) {
		t.Fatalf("coverage 1.0 must leave pixels unchanged")
	}
	if got := restoreChannel(200, 1.5, 255); got != 200 {
		t.Fatalf("restoreChannel with coverage > 1 = %d, want 200", got)
	}
}

func TestInvertNearFullCoverageIsCapped(t *testing.T) {
	// 0.995 is treated as 0.99: (255 - 0.99*255) / 0.01 = 255.
	if got := restoreChannel(255, 0.995, 255); got != 255 {
		t.Fatalf("restoreChannel = %d, want 255", got)
	}
	if got := restoreChannel(0, 0.995, 255); got != 0 {
		t.Fatalf("restoreChannel = %d, want clamped 0", got)
	}
}

func TestInvertKeepsAlphaAndOutsidePixels(t *testing.T) {
	img := gradientImage(300, 200)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 200
	}
	p := Resolve(300, 200)
	composite(img, p)
	before := cloneNRGBA(img)

	Invert(img, constantMap(t, p.Size, 0.3), p, White)

	if !sameOutside(img, before, p.Rect()) {
		t.Fatalf("pixels outside the placement changed")
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 200 {
			t.Fatalf("alpha channel modified at byte %d", i)
		}
	}
	if bytes.Equal(img.Pix, before.Pix) {
		t.Fatalf("expected the placement rectangle to change")
	}
}

func TestInvertClipsUndersizedImage(t *testing.T) {
	// A 60x50 image puts the small overlay at (-20, -30).
	img := gradientImage(60, 50)
	p := Resolve(60, 50)
	if p.OffsetX >= 0 || p.OffsetY >= 0 {
		t.Fatalf("expected negative offsets, got %+v", p)
	}
	clean := cloneNRGBA(img)
	composite(img, p)

	m, err := DeriveAlphaMap(referenceImage(p.Size), p.Size, Black, White)
	if err != nil {
		t.Fatalf("DeriveAlphaMap: %v", err)
	}
	Invert(img, m, p, White)

	visible := p.Rect().Intersect(img.Bounds())
	if d := maxChannelDiff(img, clean, visible); d > 3 {
		t.Fatalf("clipped restore differs by %d", d)
	}
	if !sameOutside(img, clean, visible) {
		t.Fatalf("pixels outside the visible placement changed")
	}
}

func TestInvertPlacementEntirelyOutside(t *testing.T) {
	img := gradientImage(10, 10)
	before := cloneNRGBA(img)
	p := Placement{Size: 48, OffsetX: 20, OffsetY: 20, Width: 48, Height: 48}

	Invert(img, constantMap(t, 48, 0.5), p, White)

	if !bytes.Equal(img.Pix, before.Pix) {
		t.Fatalf("placement outside the image must not touch pixels")
	}
}

func TestInvertHonoursBoundsOrigin(t *testing.T) {
	full := gradientImage(200, 200)
	sub := full.SubImage(image.Rect(50, 50, 150, 150)).(*image.NRGBA)
	p := Resolve(100, 100)
	composite(sub, Placement{Size: p.Size, OffsetX: 50 + p.OffsetX, OffsetY: 50 + p.OffsetY, Width: p.Size, Height: p.Size})
	clean := gradientImage(200, 200)

	m, err := DeriveAlphaMap(referenceImage(p.Size), p.Size, Black, White)
	if err != nil {
		t.Fatalf("DeriveAlphaMap: %v", err)
	}
	Invert(sub, m, p, White)

	if d := maxChannelDiff(full, clean, full.Bounds()); d > 3 {
		t.Fatalf("restore through a sub-image differs by %d", d)
	}
}
