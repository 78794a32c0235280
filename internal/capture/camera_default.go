//go:build !gocv

package capture

import "log/slog"

// NewCamera returns a camera that always reports no device. Build with
// -tags gocv to capture from a real device through OpenCV.
func NewCamera(deviceID int) Camera {
	slog.Debug("Camera support not compiled in", "device", deviceID)
	return Unavailable{}
}
