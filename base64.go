package transform

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"
)

// DecodeBase64Image decodes a base64-encoded image (optionally a data URL) into
// an image.Image. It returns the decoded image and the detected format string
// ("png", "jpeg", "webp", etc.).
func DecodeBase64Image(input string) (image.Image, string, error) {
	raw := stripDataPrefix(input)

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: base64: %w", ErrDecode, err)
	}

	return DecodeImageBytes(data)
}

// EncodeBase64 encodes img in the given format and returns a base64 string.
func EncodeBase64(img image.Image, format Format, opts EncodeOptions) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, opts); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func stripDataPrefix(input string) string {
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "data:") {
		if idx := strings.Index(input, ","); idx != -1 {
			return input[idx+1:]
		}
	}
	return strings.TrimSpace(input)
}
