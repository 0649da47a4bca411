package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// DefaultImageSize is the rendered edge length in pixels.
	DefaultImageSize = 256
	maxImageSize     = 1024
	minImageSize     = 64
)

// RenderPNG renders an encoded payload as a PNG image. Size is clamped to a
// sane range; zero selects the default.
func RenderPNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("qr payload must not be empty")
	}

	if size <= 0 {
		size = DefaultImageSize
	}
	if size < minImageSize {
		size = minImageSize
	}
	if size > maxImageSize {
		size = maxImageSize
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr image: %w", err)
	}

	return png, nil
}
