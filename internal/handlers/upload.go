package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/oracle/internal/capture"
)

// HandleBeginCapture opens the camera on the host running the server
func (h *Handler) HandleBeginCapture(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.respond(w, sess, sess.BeginCapture(r.Context()))
}

// HandleCapture takes the photo and waits for the reading. The analysis is not
// cancelled if the client goes away.
func (h *Handler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.respond(w, sess, sess.Capture(context.WithoutCancel(r.Context())))
}

// HandleUpload accepts a multipart file ("files" or "file", first one only)
// or a JSON body {"image": "data:image/...;base64,..."}.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var (
		data []byte
		err  error
	)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		data, err = readDataURL(r)
	} else {
		data, err = readFormFile(w, r)
	}
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.respond(w, sess, sess.Upload(context.WithoutCancel(r.Context()), data))
}

func readDataURL(r *http.Request) ([]byte, error) {
	var request struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 2*capture.MaxImageSize)).Decode(&request); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if request.Image == "" {
		return nil, nil
	}
	// the payload is sniffed by the session like a multipart file
	img, err := capture.ParseDataURL(request.Image)
	if err != nil {
		return nil, err
	}
	return img.Data, nil
}

func readFormFile(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, capture.MaxImageSize+1<<20)

	file, _, err := r.FormFile("files")
	if err != nil {
		file, _, err = r.FormFile("file")
	}
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	// Limit file size to 10MB
	data, err := io.ReadAll(io.LimitReader(file, capture.MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	if len(data) > capture.MaxImageSize {
		return nil, errors.New("file too large (max 10MB)")
	}
	return data, nil
}
