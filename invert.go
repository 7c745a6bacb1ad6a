package watermark

import (
	"image"
	"math"
)

const (
	// Coverage below this is treated as no overlay at all.
	coverageThreshold = 0.002
	// Coverage is capped here so nearly opaque pixels stay invertible.
	maxCoverage = 0.99
)

// Invert reverses the overlay composite in place over the placement
// rectangle of img. Placement offsets are relative to img.Bounds().Min; the
// working rectangle is clipped to the image, and the alpha map stays aligned
// with the unclipped placement so a partially visible overlay is still
// restored correctly. Only colour channels are written; the alpha channel
// and every pixel outside the rectangle are left untouched.
//
// Channels with coverage of exactly 1 (or more) are left unchanged: no
// original signal survives there. Coverage in (0.99, 1) is capped at 0.99.
func Invert(img *image.NRGBA, m *AlphaMap, p Placement, ink Ink) {
	bounds := img.Bounds()
	origin := p.Rect().Add(bounds.Min)
	work := origin.Intersect(bounds)
	if work.Empty() {
		return
	}

	inks := [3]float64{ink.R, ink.G, ink.B}

	for y := work.Min.Y; y < work.Max.Y; y++ {
		for x := work.Min.X; x < work.Max.X; x++ {
			cov := m.At(x-origin.Min.X, y-origin.Min.Y)
			if cov.Combined() < coverageThreshold {
				continue
			}

			offset := img.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				img.Pix[offset+c] = restoreChannel(img.Pix[offset+c], float64(cov[c]), inks[c])
			}
		}
	}
}

// restoreChannel solves observed = c*ink + (1-c)*original for original.
func restoreChannel(observed uint8, coverage, ink float64) uint8 {
	if coverage < coverageThreshold || coverage >= 1 {
		return observed
	}
	return clampChannel(unblend(float64(observed), coverage, ink))
}

func unblend(observed, coverage, ink float64) float64 {
	if coverage > maxCoverage {
		coverage = maxCoverage
	}
	return (observed - coverage*ink) / (1.0 - coverage)
}

func clampChannel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}
