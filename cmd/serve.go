package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lehigh-university-libraries/oracle/internal/capture"
	"github.com/lehigh-university-libraries/oracle/internal/handlers"
	"github.com/lehigh-university-libraries/oracle/internal/session"
	"github.com/lehigh-university-libraries/oracle/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var pf providerFlags
	var port string
	var cameraID int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the reading API server",
		Long: `Starts the Oracle HTTP API on the specified port.

Each client creates a session, picks palm or face, then uploads a photo or
captures one from the server's camera. The session JSON carries the phase,
the photo and the reading once it is ready.`,
		Example: `  # Start server on default port 8888
  oracle serve

  # Start server on custom port with a second camera
  oracle serve --port 3000 --camera-id 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			camera := capture.NewCamera(cfg.CameraID)
			store := storage.New(func(id string) *session.Session {
				return session.New(id, camera, gateway)
			})
			defer store.Close()

			// Set up routes
			r := chi.NewRouter()
			r.Use(middleware.RequestID)
			r.Use(middleware.Recoverer)
			handlers.New(store).RegisterRoutes(r)
			r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Oracle API available", "addr", addr, "url", "http://localhost"+addr, "provider", cfg.Provider)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	pf.register(cmd)
	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().IntVar(&cameraID, "camera-id", 0, "Camera device index (default $ORACLE_CAMERA or 0)")

	return cmd
}
