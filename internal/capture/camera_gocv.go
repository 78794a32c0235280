//go:build gocv

package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// NewCamera returns an OpenCV-backed camera for the given device index
func NewCamera(deviceID int) Camera {
	return &cvCamera{deviceID: deviceID}
}

type cvCamera struct {
	deviceID int
}

func (c *cvCamera) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, &DeviceError{Op: "open", Err: err}
	}

	vc, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return nil, &DeviceError{Op: "open", Err: fmt.Errorf("%w: %v", ErrNoDevice, err)}
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, &DeviceError{Op: "open", Err: ErrPermissionDenied}
	}

	slog.Debug("Camera opened", "device", c.deviceID)
	return &cvStream{vc: vc, deviceID: c.deviceID}, nil
}

type cvStream struct {
	mu       sync.Mutex
	vc       *gocv.VideoCapture
	deviceID int
}

func (s *cvStream) Snapshot() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vc == nil {
		return nil, ErrStreamClosed
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := s.vc.Read(&mat); !ok || mat.Empty() {
		return nil, &DeviceError{Op: "read", Err: fmt.Errorf("empty frame from device %d", s.deviceID)}
	}

	frame, err := mat.ToImage()
	if err != nil {
		return nil, &DeviceError{Op: "read", Err: err}
	}
	return frame, nil
}

func (s *cvStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vc == nil {
		return nil
	}
	err := s.vc.Close()
	s.vc = nil
	slog.Debug("Camera released", "device", s.deviceID)
	return err
}
