// Package qr renders redemption tokens as self-contained QR code images.
package qr

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/yeqown/go-qrcode"
)

const (
	DataURIPrefix = "data:image/png;base64,"

	defaultModulePx  = 10
	defaultQuietZone = 4
)

// Encoder renders PNG symbols at the highest error correction level with a
// quiet zone of QuietZone modules on every side.
type Encoder struct {
	modulePx  uint8
	quietZone int
}

func NewEncoder(modulePx uint8, quietZone int) *Encoder {
	if modulePx == 0 {
		modulePx = defaultModulePx
	}
	if quietZone < defaultQuietZone {
		quietZone = defaultQuietZone
	}
	return &Encoder{
		modulePx:  modulePx,
		quietZone: quietZone,
	}
}

// PNG returns the encoded symbol for content.
func (e *Encoder) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("empty content")
	}
	qrc, err := qrcode.NewWithConfig(content,
		&qrcode.Config{
			EcLevel: qrcode.ErrorCorrectionHighest,
			EncMode: qrcode.EncModeByte,
		},
		qrcode.WithQRWidth(e.modulePx),
		qrcode.WithBorderWidth(int(e.modulePx)*e.quietZone),
		qrcode.WithBuiltinImageEncoder(qrcode.PNG_FORMAT),
	)
	if err != nil {
		return nil, fmt.Errorf("qrcode encode: %w", err)
	}
	var buf bytes.Buffer
	if err = qrc.SaveTo(&buf); err != nil {
		return nil, fmt.Errorf("qrcode render: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI returns the symbol for content wrapped as a base64 PNG data URI.
func (e *Encoder) DataURI(content string) (string, error) {
	img, err := e.PNG(content)
	if err != nil {
		return "", err
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(img), nil
}
