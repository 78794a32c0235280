package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/oracle/internal/capture"
	"github.com/lehigh-university-libraries/oracle/internal/models"
	"github.com/lehigh-university-libraries/oracle/internal/render"
	"github.com/lehigh-university-libraries/oracle/internal/session"
	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	var pf providerFlags
	var readingType string
	var imagePath string
	var useCamera bool
	var cameraID int
	var format string

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Get one palm or face reading",
		Long: `Runs one reading in the terminal.

The photo comes either from an image file (--image) or from a camera
(--camera). Camera capture requires a binary built with -tags gocv.`,
		Example: `  # Read a palm from a photo
  oracle read --type palm --image ./palm.jpg

  # Read a face from the default camera, output YAML
  oracle read --type face --camera --format yaml

  # Use a local Ollama model
  oracle read --type palm --image ./palm.jpg --provider ollama --model llava:13b`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := models.ParseReadingType(readingType)
			if err != nil {
				return err
			}
			if (imagePath == "") == !useCamera {
				return fmt.Errorf("exactly one of --image or --camera is required")
			}
			if format != "text" && format != "yaml" {
				return fmt.Errorf("invalid format %q: must be 'text' or 'yaml'", format)
			}

			cfg, err := pf.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("camera-id") {
				cfg.CameraID = cameraID
			}
			gateway, err := cfg.NewGateway()
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			sess := session.New("terminal", capture.NewCamera(cfg.CameraID), gateway,
				session.WithObserver(func(s session.Snapshot) { printPhase(stderr, s) }))
			defer sess.Reset()

			if err := sess.SelectReadingType(t); err != nil {
				return err
			}

			if useCamera {
				err = readFromCamera(cmd.Context(), sess, cmd.InOrStdin(), stderr)
			} else {
				err = readFromFile(cmd.Context(), sess, imagePath)
			}

			snap := sess.Snapshot()
			if snap.Phase != session.PhaseResult {
				if snap.LastError != "" {
					return errors.New(snap.LastError)
				}
				if err != nil {
					return err
				}
				return fmt.Errorf("no reading was produced")
			}

			view, err := render.NewView(snap)
			if err != nil {
				return err
			}
			if format == "yaml" {
				return render.YAML(cmd.OutOrStdout(), view)
			}
			return render.Text(cmd.OutOrStdout(), view)
		},
	}

	pf.register(cmd)
	cmd.Flags().StringVarP(&readingType, "type", "t", "", "Reading type: palm or face")
	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to a photo")
	cmd.Flags().BoolVar(&useCamera, "camera", false, "Take the photo with a camera")
	cmd.Flags().IntVar(&cameraID, "camera-id", 0, "Camera device index (default $ORACLE_CAMERA or 0)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or yaml")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func readFromFile(ctx context.Context, sess *session.Session, path string) error {
	data, err := capture.ReadFile(path)
	if err != nil {
		return err
	}
	return sess.Upload(ctx, data)
}

// readFromCamera opens the camera and waits for Enter to capture, or "b" to go back
func readFromCamera(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer) error {
	if err := sess.BeginCapture(ctx); err != nil {
		return err
	}

	fmt.Fprintln(out, "Enter를 누르면 촬영합니다. 'b'를 입력하면 취소합니다.")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		_ = sess.Back()
		return fmt.Errorf("failed to read input: %w", err)
	}
	if strings.TrimSpace(line) == "b" {
		return sess.Back()
	}
	return sess.Capture(ctx)
}

func printPhase(w io.Writer, s session.Snapshot) {
	switch s.Phase {
	case session.PhaseSelecting:
		// errors are returned by RunE
		if s.LastError == "" {
			fmt.Fprintln(w, s.ReadingType.Hint())
		}
	case session.PhaseCapturing:
		fmt.Fprintln(w, "카메라가 켜졌습니다.")
	case session.PhaseAnalyzing:
		fmt.Fprintln(w, "운명의 기운을 읽는 중...")
	}
}
