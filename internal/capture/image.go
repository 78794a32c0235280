// Package capture acquires still images from a camera or a local file and
// normalizes both into one in-memory representation.
package capture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotImage is returned when the supplied bytes are not an image.
	ErrNotImage = errors.New("capture: not an image")

	// ErrTooLarge is returned when a file exceeds MaxImageSize.
	ErrTooLarge = errors.New("capture: image too large")

	// ErrEmpty is returned when no image data was supplied.
	ErrEmpty = errors.New("capture: no image data")

	// ErrInvalidDataURL is returned when a data URL cannot be parsed.
	ErrInvalidDataURL = errors.New("capture: invalid data URL")
)

// MaxImageSize limits uploaded files to 10MB
const MaxImageSize = 10 * 1024 * 1024

// Image is an encoded still image
type Image struct {
	MIMEType string
	Data     []byte
	Width    int
	Height   int
}

// DataURL renders the image as data:<mime>;base64,<payload>
func (i *Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Format returns the MIME subtype, e.g. "jpeg"
func (i *Image) Format() string {
	return strings.TrimPrefix(i.MIMEType, "image/")
}

// ParseDataURL decodes a base64 data URL. Only the payload after the comma is
// decoded. The declared MIME type is kept as given; callers sniff the payload
// with FromBytes. An empty payload is not an error.
func ParseDataURL(s string) (*Image, error) {
	prefix, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(prefix, "data:") {
		return nil, ErrInvalidDataURL
	}
	meta := strings.TrimPrefix(prefix, "data:")
	mimeType, enc, _ := strings.Cut(meta, ";")
	if enc != "base64" {
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrInvalidDataURL, enc)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return &Image{MIMEType: mimeType, Data: data}, nil
}
