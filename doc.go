// Package watermark removes the fixed translucent overlay that the Gemini image
// generator composites onto its output.
//
// The overlay's per-pixel coverage is derived from two reference rasters
// (48x48 and 96x96, captured against a black background) and the composite is
// reversed with the inverse of the "over" equation. Which overlay applies and
// where it sits is decided purely from the image dimensions. The package works
// entirely in memory; fetching, serving and watching live under internal/.
package watermark
