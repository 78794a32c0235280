package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
)

var (
	// ErrNoDevice is returned when no camera is present.
	ErrNoDevice = errors.New("capture: no camera device")

	// ErrPermissionDenied is returned when the camera cannot be opened for lack of access.
	ErrPermissionDenied = errors.New("capture: camera permission denied")

	// ErrStreamClosed is returned when snapshotting a released stream.
	ErrStreamClosed = errors.New("capture: stream closed")
)

// DeviceMessage is shown to the user when the camera cannot be used
const DeviceMessage = "카메라를 시작할 수 없습니다. 권한을 확인해주세요."

// DeviceError reports a camera failure. It is recoverable: the user can
// retry or upload a file instead.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("camera %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Camera hands out exclusive streams from a user-facing video device
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is a live frame source. Close releases the device and is safe to
// call more than once.
type Stream interface {
	Snapshot() (image.Image, error)
	Close() error
}

// JPEGQuality is used when encoding camera frames
const JPEGQuality = 90

// EncodeJPEG encodes a frame at its native resolution
func EncodeJPEG(frame image.Image) (*Image, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	b := frame.Bounds()
	return &Image{
		MIMEType: "image/jpeg",
		Data:     buf.Bytes(),
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

// Unavailable is a Camera that has no device behind it
type Unavailable struct{}

func (Unavailable) Open(context.Context) (Stream, error) {
	return nil, &DeviceError{Op: "open", Err: ErrNoDevice}
}
