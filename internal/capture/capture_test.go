package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFromBytes(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantErr  error
		wantMIME string
	}{
		{
			name:     "png image",
			data:     testPNG(t, 4, 3),
			wantMIME: "image/png",
		},
		{
			name:    "plain text",
			data:    []byte("hello, this is not a picture"),
			wantErr: ErrNotImage,
		},
		{
			name:    "empty",
			data:    nil,
			wantErr: ErrEmpty,
		},
		{
			name:    "too large",
			data:    make([]byte, MaxImageSize+1),
			wantErr: ErrTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := FromBytes(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if img.MIMEType != tt.wantMIME {
				t.Errorf("Expected MIME %s, got %s", tt.wantMIME, img.MIMEType)
			}
		})
	}
}

func TestFromBytesDimensions(t *testing.T) {
	img, err := FromBytes(testPNG(t, 8, 5))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if img.Width != 8 || img.Height != 5 {
		t.Errorf("Expected 8x5, got %dx%d", img.Width, img.Height)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	small := filepath.Join(dir, "palm.png")
	if err := os.WriteFile(small, testPNG(t, 2, 2), 0644); err != nil {
		t.Fatal(err)
	}
	data, err := ReadFile(small)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := FromBytes(data); err != nil {
		t.Errorf("Expected a valid image, got %v", err)
	}

	big := filepath.Join(dir, "big.jpg")
	if err := os.WriteFile(big, make([]byte, MaxImageSize+100), 0644); err != nil {
		t.Fatal(err)
	}
	data, err = ReadFile(big)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(data) != MaxImageSize+1 {
		t.Errorf("Expected read to stop at %d bytes, got %d", MaxImageSize+1, len(data))
	}
	if _, err := FromBytes(data); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	orig := &Image{MIMEType: "image/png", Data: testPNG(t, 2, 2)}
	url := orig.DataURL()
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("Unexpected prefix: %s", url[:30])
	}

	parsed, err := ParseDataURL(url)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if parsed.MIMEType != orig.MIMEType || !bytes.Equal(parsed.Data, orig.Data) {
		t.Error("Parsed image does not match original")
	}
	if parsed.Format() != "png" {
		t.Errorf("Expected format png, got %s", parsed.Format())
	}
}

func TestParseDataURLErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"no comma", "data:image/png;base64", ErrInvalidDataURL},
		{"no scheme", "image/png;base64,AAAA", ErrInvalidDataURL},
		{"not base64", "data:image/png,AAAA", ErrInvalidDataURL},
		{"bad payload", "data:image/png;base64,@@@", ErrInvalidDataURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDataURL(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseDataURLLeavesContentCheckToFromBytes(t *testing.T) {
	text, err := ParseDataURL("data:text/plain;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(text.Data) != "hello" {
		t.Errorf("Expected decoded payload, got %q", text.Data)
	}
	if _, err := FromBytes(text.Data); !errors.Is(err, ErrNotImage) {
		t.Errorf("Expected ErrNotImage from FromBytes, got %v", err)
	}

	empty, err := ParseDataURL("data:image/png;base64,")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(empty.Data) != 0 {
		t.Errorf("Expected empty payload, got %d bytes", len(empty.Data))
	}
}

func TestEncodeJPEG(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 16, 9))
	img, err := EncodeJPEG(frame)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if img.MIMEType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", img.MIMEType)
	}
	if img.Width != 16 || img.Height != 9 {
		t.Errorf("Expected native resolution 16x9, got %dx%d", img.Width, img.Height)
	}
	if _, err := FromBytes(img.Data); err != nil {
		t.Errorf("Encoded frame is not a valid image: %v", err)
	}
}

func TestUnavailableCamera(t *testing.T) {
	_, err := Unavailable{}.Open(context.Background())

	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("Expected DeviceError, got %T", err)
	}
	if !errors.Is(err, ErrNoDevice) {
		t.Errorf("Expected ErrNoDevice, got %v", err)
	}
}
