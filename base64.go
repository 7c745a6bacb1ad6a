package watermark

import (
	"encoding/base64"
	"fmt"
	"image"
	"strings"
)

const pngDataURLPrefix = "data:image/png;base64,"

// DecodeBase64Image decodes a base64-encoded image (optionally a data URL) into
// an image.Image. It returns the decoded image and the detected format string
// ("png", "jpeg", "webp", etc.).
func DecodeBase64Image(input string) (image.Image, string, error) {
	raw := stripDataPrefix(input)

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode base64: %v", ErrDecode, err)
	}

	return DecodeImageBytes(data)
}

// EncodePNGToBase64 encodes an image as PNG and returns a base64 string.
func EncodePNGToBase64(img image.Image) (string, error) {
	data, err := EncodePNGBytes(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// PNGDataURL wraps already encoded PNG bytes in a data URL.
func PNGDataURL(data []byte) string {
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(data)
}

// RemoveWatermarkBase64 removes the watermark from a base64-encoded image. It
// returns the cleaned image as base64 PNG, whether a watermark was detected
// and the detection details. When no watermark is detected the output is
// empty and the input is left alone.
func (e *Engine) RemoveWatermarkBase64(input string) (output string, det Detection, err error) {
	img, _, err := DecodeBase64Image(input)
	if err != nil {
		return "", Detection{}, err
	}

	det, err = e.Detect(img)
	if err != nil {
		return "", Detection{}, err
	}
	if !det.Present {
		return "", det, nil
	}

	res, err := e.Process(img)
	if err != nil {
		return "", Detection{}, err
	}

	output, err = EncodePNGToBase64(res.Image)
	if err != nil {
		return "", Detection{}, err
	}

	return output, det, nil
}

func stripDataPrefix(input string) string {
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "data:") {
		if idx := strings.Index(input, ","); idx != -1 {
			return input[idx+1:]
		}
	}
	return input
}
