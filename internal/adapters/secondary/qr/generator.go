// Package qr renders join URLs as QR code images.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/lorrc/queue-backend/internal/core/ports"
)

// Generator implements ports.QRGenerator using skip2/go-qrcode.
type Generator struct{}

var _ ports.QRGenerator = (*Generator)(nil)

func NewGenerator() *Generator {
	return &Generator{}
}

// GeneratePNG encodes the URL at medium error correction and returns the PNG
// as base64, ready to embed in a data URI.
func (g *Generator) GeneratePNG(url string, size int) (string, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("encoding qr code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
