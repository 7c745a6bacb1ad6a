package watermark

import "image"

// Overlay sizes and margins used by the upstream generator.
const (
	SmallSize   = 48
	SmallMargin = 32
	LargeSize   = 96
	LargeMargin = 64

	// largeThreshold is the dimension both sides must exceed before the large
	// overlay is used.
	largeThreshold = 1024
)

// Placement describes where the overlay was composited on an image of the
// given dimensions. Offsets may be negative for images smaller than
// Margin+Size; consumers clip against the real bounds.
type Placement struct {
	Size    int
	Margin  int
	OffsetX int
	OffsetY int
	Width   int
	Height  int
}

// Resolve selects the overlay tier from the image dimensions: if both width
// and height are greater than 1024 the 96x96 overlay with 64px margins is
// used, otherwise the 48x48 overlay with 32px margins. The overlay is anchored
// to the bottom-right corner.
func Resolve(width, height int) Placement {
	size, margin := SmallSize, SmallMargin
	if width > largeThreshold && height > largeThreshold {
		size, margin = LargeSize, LargeMargin
	}

	return Placement{
		Size:    size,
		Margin:  margin,
		OffsetX: width - margin - size,
		OffsetY: height - margin - size,
		Width:   size,
		Height:  size,
	}
}

// Rect returns the placement rectangle relative to an image origin of (0, 0).
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.OffsetX, p.OffsetY, p.OffsetX+p.Width, p.OffsetY+p.Height)
}

// In reports whether the whole placement rectangle lies inside bounds, once
// translated to the bounds origin.
func (p Placement) In(bounds image.Rectangle) bool {
	return p.Rect().Add(bounds.Min).In(bounds)
}
