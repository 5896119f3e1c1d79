// Package qr renders payment links as QR code PNGs so mobile users can
// open the checkout page from another device.
package qr

import (
	"bytes"
	"io"

	"github.com/yeqown/go-qrcode"
)

// Render encodes content into a PNG and returns a reader over the
// image bytes.
func Render(content string) (io.Reader, error) {
	qrc, err := qrcode.New(content,
		qrcode.WithQRWidth(7),
		qrcode.WithBuiltinImageEncoder(qrcode.PNG_FORMAT),
	)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := qrc.SaveTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
