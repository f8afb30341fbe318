// Package qr renders verification links as embeddable QR code images.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const dataURIPrefix = "data:image/png;base64,"

// Renderer turns a URL into an embeddable image.
type Renderer interface {
	Render(content string) (string, error)
}

// PNGRenderer renders QR codes as PNG data URIs.
type PNGRenderer struct {
	Size  int
	Level qrcode.RecoveryLevel
}

// NewPNGRenderer returns a renderer producing 256px images with medium error correction.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Size: 256, Level: qrcode.Medium}
}

// Render encodes content and returns it as a data URI.
func (r *PNGRenderer) Render(content string) (string, error) {
	png, err := qrcode.Encode(content, r.Level, r.Size)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
