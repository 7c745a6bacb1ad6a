package watermark

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/stat"
)

const (
	// Brightness difference threshold to consider a watermark present.
	// The watermark is white on darker pixels, so the mean luma in the
	// watermark rectangle should be noticeably higher than its surroundings.
	detectionLumaThreshold = 6.0

	// Minimum Pearson correlation between the rectangle's luma and the
	// overlay's combined coverage.
	detectionCorrelationThreshold = 0.3

	// Variance below this is rounding noise from a flat region.
	flatVariance = 1e-9
)

// Detection is the outcome of checking an image for the overlay.
type Detection struct {
	Present     bool
	Score       float64
	Correlation float64
	Placement   Placement
	Position    image.Rectangle
}

// Detect estimates whether the overlay is present. It compares the average
// luma inside the expected rectangle with a surrounding band and correlates
// the rectangle's luma with the overlay's coverage map.
func (e *Engine) Detect(img image.Image) (Detection, error) {
	if img == nil {
		return Detection{}, fmt.Errorf("%w: nil image provided", ErrUnsupportedInput)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return Detection{}, fmt.Errorf("%w: invalid image dimensions %dx%d", ErrUnsupportedInput, width, height)
	}

	p := e.Placement(width, height)
	rect := p.Rect().Add(bounds.Min)
	det := Detection{Placement: p, Position: rect}
	if !p.In(bounds) {
		// Undersized input; nothing to compare against.
		return det, nil
	}

	alphaMap, err := e.cache.GetOrCompute(p.Size)
	if err != nil {
		return Detection{}, err
	}

	// Use a surrounding band to approximate the background without the watermark.
	band := p.Size / 3
	if band < 8 {
		band = 8
	}
	outer := rect.Inset(-band).Intersect(bounds)

	wmMean, wmCount := meanLuma(img, rect, image.Rectangle{})
	bgMean, bgCount := meanLuma(img, outer, rect)
	if wmCount == 0 || bgCount == 0 {
		return Detection{}, fmt.Errorf("insufficient pixels to evaluate watermark")
	}

	det.Score = wmMean - bgMean
	det.Correlation = correlate(img, rect, alphaMap)
	det.Present = det.Score > detectionLumaThreshold && det.Correlation > detectionCorrelationThreshold

	return det, nil
}

// DetectBytes decodes data and runs Detect on it.
func (e *Engine) DetectBytes(data []byte) (Detection, error) {
	img, _, err := DecodeImageBytes(data)
	if err != nil {
		return Detection{}, err
	}
	return e.Detect(img)
}

// correlate returns the Pearson correlation between the luma of rect and the
// combined coverage of m. Flat regions correlate as 0.
func correlate(img image.Image, rect image.Rectangle, m *AlphaMap) float64 {
	luma := make([]float64, 0, rect.Dx()*rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			luma = append(luma, lumaAt(img, x, y))
		}
	}

	coverage := m.CombinedValues()
	if stat.Variance(luma, nil) < flatVariance || stat.Variance(coverage, nil) < flatVariance {
		return 0
	}
	return stat.Correlation(luma, coverage, nil)
}

// meanLuma computes the average luma for pixels in region. If exclude is not
// empty, pixels inside exclude are skipped.
func meanLuma(img image.Image, region image.Rectangle, exclude image.Rectangle) (float64, int) {
	var sum float64
	var count int

	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			if exclude != (image.Rectangle{}) && (image.Point{X: x, Y: y}).In(exclude) {
				continue
			}
			sum += lumaAt(img, x, y)
			count++
		}
	}

	if count == 0 {
		return 0, 0
	}

	return sum / float64(count), count
}

// lumaAt returns the Rec. 709 luma of the pixel in [0, 255].
func lumaAt(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return 0.2126*float64(r)/257.0 + 0.7152*float64(g)/257.0 + 0.0722*float64(b)/257.0
}
