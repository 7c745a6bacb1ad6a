package watermark

import "errors"

// Error kinds reported by the engine. Callers match them with errors.Is; the
// returned errors wrap these with the failing asset, size or input detail.
var (
	// ErrAssetLoad reports a reference overlay asset that is missing or cannot
	// be decoded. It is only returned while constructing an Engine.
	ErrAssetLoad = errors.New("watermark asset load failed")

	// ErrShapeMismatch reports a reference raster whose dimensions differ from
	// the overlay size it is supposed to describe.
	ErrShapeMismatch = errors.New("watermark reference shape mismatch")

	// ErrUnsupportedInput reports an input that is not a usable raster: a nil
	// or empty image, or bytes in a format no registered decoder recognises.
	ErrUnsupportedInput = errors.New("unsupported input")

	// ErrDecode reports input bytes in a known format that failed to decode.
	ErrDecode = errors.New("decode image")
)
