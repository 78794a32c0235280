// Package session holds the reading state machine. All mutation goes
// through the transition methods; presentation code only sees Snapshots.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/oracle/internal/capture"
	"github.com/lehigh-university-libraries/oracle/internal/models"
	"github.com/lehigh-university-libraries/oracle/internal/oracle"
)

// Phase is the session's position in the reading flow
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseSelecting Phase = "SELECTING"
	PhaseCapturing Phase = "CAPTURING"
	PhaseAnalyzing Phase = "ANALYZING"
	PhaseResult    Phase = "RESULT"
)

// UploadMessage is shown when a selected file cannot be used as a photo
const UploadMessage = "이미지 파일을 읽을 수 없습니다. 사진 파일을 선택해주세요."

var (
	// ErrInvalidTransition matches every *TransitionError.
	ErrInvalidTransition = errors.New("session: invalid transition")

	// ErrSuperseded is returned by an analysis or camera open whose session
	// moved on (reset, back, upload) while it ran.
	ErrSuperseded = errors.New("session: superseded by a later transition")
)

// TransitionError reports an action invoked from a phase that does not allow it.
// The session is left untouched.
type TransitionError struct {
	Action string
	Phase  Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("session: %s not allowed in phase %s", e.Action, e.Phase)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Analyzer produces a reading for an image. *oracle.Gateway implements it.
type Analyzer interface {
	Analyze(ctx context.Context, img *capture.Image, t models.ReadingType) (*models.AnalysisResult, error)
}

// Snapshot is a read-only copy of a session's state
type Snapshot struct {
	ID          string
	Phase       Phase
	ReadingType models.ReadingType
	Image       *capture.Image
	Result      *models.AnalysisResult
	LastError   string
	UpdatedAt   time.Time
}

// Option configures a Session
type Option func(*Session)

// WithObserver registers a hook called with a fresh snapshot after every
// successful transition. It runs outside the session lock.
func WithObserver(fn func(Snapshot)) Option {
	return func(s *Session) {
		s.observer = fn
	}
}

// Session is one reading flow: one terminal run or one browser tab
type Session struct {
	id       string
	camera   capture.Camera
	analyzer Analyzer
	observer func(Snapshot)

	mu          sync.Mutex
	phase       Phase
	readingType models.ReadingType
	image       *capture.Image
	result      *models.AnalysisResult
	lastError   string
	stream      capture.Stream
	pendingOpen uint64
	opens       uint64
	generation  uint64
	updatedAt   time.Time
}

// New returns a session in IDLE with the palm reading preselected
func New(id string, camera capture.Camera, analyzer Analyzer, opts ...Option) *Session {
	if camera == nil {
		camera = capture.Unavailable{}
	}
	s := &Session{
		id:          id,
		camera:      camera,
		analyzer:    analyzer,
		phase:       PhaseIdle,
		readingType: models.ReadingPalm,
		updatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:          s.id,
		Phase:       s.phase,
		ReadingType: s.readingType,
		Result:      s.result.Clone(),
		LastError:   s.lastError,
		UpdatedAt:   s.updatedAt,
	}
	if s.image != nil {
		img := *s.image
		snap.Image = &img
	}
	return snap
}

// transition runs fn under the lock and, if it returns nil or a non-transition
// error, notifies the observer.
func (s *Session) transition(fn func() error) error {
	s.mu.Lock()
	err := fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if !errors.Is(err, ErrInvalidTransition) && s.observer != nil {
		s.observer(snap)
	}
	return err
}

func (s *Session) guard(action string, allowed ...Phase) error {
	for _, p := range allowed {
		if s.phase == p {
			return nil
		}
	}
	return &TransitionError{Action: action, Phase: s.phase}
}

func (s *Session) setPhase(p Phase) {
	if s.phase == p {
		return
	}
	slog.Debug("Session transition", "session_id", s.id, "from", s.phase, "to", p)
	s.phase = p
	s.pendingOpen = 0
	s.updatedAt = time.Now()
}

// releaseLocked stops the camera stream if one is held
func (s *Session) releaseLocked() {
	if s.stream == nil {
		return
	}
	if err := s.stream.Close(); err != nil {
		slog.Warn("Failed to release camera", "session_id", s.id, "err", err)
	}
	s.stream = nil
}

// SelectReadingType picks palm or face. Valid from IDLE.
func (s *Session) SelectReadingType(t models.ReadingType) error {
	return s.transition(func() error {
		if err := s.guard("selectReadingType", PhaseIdle); err != nil {
			return err
		}
		if !t.Valid() {
			return fmt.Errorf("invalid reading type %q", t)
		}
		s.readingType = t
		s.setPhase(PhaseSelecting)
		return nil
	})
}

// BeginCapture opens the camera. Valid from SELECTING. On failure the session
// stays in SELECTING with a user-facing message and a *capture.DeviceError is
// returned. The device is opened outside the lock; if the session leaves
// SELECTING meanwhile, the stream is closed and ErrSuperseded is returned.
func (s *Session) BeginCapture(ctx context.Context) error {
	s.mu.Lock()
	if err := s.guard("beginCapture", PhaseSelecting); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.pendingOpen != 0 {
		s.mu.Unlock()
		return &TransitionError{Action: "beginCapture", Phase: s.phase}
	}
	s.opens++
	token := s.opens
	s.pendingOpen = token
	s.mu.Unlock()

	stream, err := s.camera.Open(ctx)

	return s.transition(func() error {
		if s.pendingOpen != token || s.phase != PhaseSelecting {
			if stream != nil {
				if cerr := stream.Close(); cerr != nil {
					slog.Warn("Failed to release camera", "session_id", s.id, "err", cerr)
				}
			}
			slog.Info("Discarding camera open after a later transition", "session_id", s.id)
			return ErrSuperseded
		}
		s.pendingOpen = 0

		if err != nil {
			s.lastError = capture.DeviceMessage
			s.updatedAt = time.Now()
			slog.Warn("Camera unavailable", "session_id", s.id, "err", err)
			return asDeviceError("open", err)
		}

		s.stream = stream
		s.setPhase(PhaseCapturing)
		return nil
	})
}

// Capture snapshots the current frame, releases the camera, and runs the
// analysis. Valid from CAPTURING. A frame that cannot be read sends the
// session back to SELECTING.
func (s *Session) Capture(ctx context.Context) error {
	var (
		img *capture.Image
		gen uint64
		t   models.ReadingType
	)
	err := s.transition(func() error {
		if err := s.guard("capture", PhaseCapturing); err != nil {
			return err
		}
		if s.stream == nil {
			return &TransitionError{Action: "capture", Phase: s.phase}
		}

		frame, err := s.stream.Snapshot()
		s.releaseLocked()
		if err == nil {
			img, err = capture.EncodeJPEG(frame)
		}
		if err != nil {
			s.lastError = capture.DeviceMessage
			s.setPhase(PhaseSelecting)
			slog.Warn("Camera capture failed", "session_id", s.id, "err", err)
			return asDeviceError("capture", err)
		}

		gen, t = s.beginAnalysisLocked(img)
		return nil
	})
	if err != nil {
		return err
	}
	return s.finishAnalysis(ctx, gen, img, t)
}

// Upload decodes a selected file and runs the analysis. Valid from SELECTING.
// Empty input means no file was chosen and is a no-op.
func (s *Session) Upload(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.guard("uploadImage", PhaseSelecting)
	}

	img, err := capture.FromBytes(data)
	if err != nil {
		return s.rejectUpload(err)
	}
	return s.UploadImage(ctx, img)
}

// UploadImage runs the analysis for an already decoded image. Valid from SELECTING.
func (s *Session) UploadImage(ctx context.Context, img *capture.Image) error {
	var (
		gen uint64
		t   models.ReadingType
	)
	err := s.transition(func() error {
		if err := s.guard("uploadImage", PhaseSelecting); err != nil {
			return err
		}
		gen, t = s.beginAnalysisLocked(img)
		return nil
	})
	if err != nil {
		return err
	}
	return s.finishAnalysis(ctx, gen, img, t)
}

func (s *Session) rejectUpload(cause error) error {
	return s.transition(func() error {
		if err := s.guard("uploadImage", PhaseSelecting); err != nil {
			return err
		}
		s.lastError = UploadMessage
		s.updatedAt = time.Now()
		slog.Warn("Rejected upload", "session_id", s.id, "err", cause)
		return cause
	})
}

// beginAnalysisLocked is the entry half of requestAnalysis: it is only
// reachable from SELECTING or CAPTURING and moves the session to ANALYZING.
func (s *Session) beginAnalysisLocked(img *capture.Image) (uint64, models.ReadingType) {
	s.image = img
	s.result = nil
	s.lastError = ""
	s.generation++
	s.setPhase(PhaseAnalyzing)
	return s.generation, s.readingType
}

// finishAnalysis calls the analyzer once and applies the outcome unless the
// session was reset in the meantime.
func (s *Session) finishAnalysis(ctx context.Context, gen uint64, img *capture.Image, t models.ReadingType) error {
	var result *models.AnalysisResult
	var err error
	if s.analyzer == nil {
		err = errors.New("no analyzer configured")
	} else {
		result, err = s.analyzer.Analyze(ctx, img, t)
	}
	if err != nil && !errors.Is(err, oracle.ErrAnalysisFailed) {
		err = &oracle.AnalysisFailure{Cause: err}
	}

	return s.transition(func() error {
		if s.generation != gen || s.phase != PhaseAnalyzing {
			slog.Info("Discarding analysis outcome after reset", "session_id", s.id)
			return ErrSuperseded
		}
		if err != nil {
			s.image = nil
			s.result = nil
			s.lastError = err.Error()
			s.setPhase(PhaseIdle)
			return err
		}
		s.result = result.Clone()
		s.setPhase(PhaseResult)
		return nil
	})
}

// Back leaves the current step: SELECTING goes to IDLE, CAPTURING releases
// the camera and goes to SELECTING.
func (s *Session) Back() error {
	return s.transition(func() error {
		if err := s.guard("back", PhaseSelecting, PhaseCapturing); err != nil {
			return err
		}
		if s.phase == PhaseCapturing {
			s.releaseLocked()
			s.setPhase(PhaseSelecting)
			return nil
		}
		s.setPhase(PhaseIdle)
		return nil
	})
}

// Reset returns to IDLE from any phase, releasing the camera and dropping the
// image, result, and error. An IDLE session left with an error from a failed
// analysis has the error cleared; a clean IDLE session is not changed.
func (s *Session) Reset() {
	_ = s.transition(func() error {
		s.releaseLocked()
		s.pendingOpen = 0
		if s.phase == PhaseIdle && s.lastError != "" {
			s.updatedAt = time.Now()
		}
		if s.phase == PhaseAnalyzing {
			s.generation++
		}
		s.image = nil
		s.result = nil
		s.lastError = ""
		s.setPhase(PhaseIdle)
		return nil
	})
}

func asDeviceError(op string, err error) error {
	var devErr *capture.DeviceError
	if errors.As(err, &devErr) {
		return devErr
	}
	return &capture.DeviceError{Op: op, Err: err}
}
