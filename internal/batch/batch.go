// Package batch runs readings for a directory of photos and saves them for
// later review.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/oracle/internal/capture"
	"github.com/lehigh-university-libraries/oracle/internal/models"
	"github.com/lehigh-university-libraries/oracle/internal/session"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SectionRecord is one scored section of a reading
type SectionRecord struct {
	Key         string  `parquet:"key" yaml:"key"`
	Title       string  `parquet:"title" yaml:"title"`
	Description string  `parquet:"description" yaml:"description"`
	Score       float64 `parquet:"score" yaml:"score"`
}

// Record is one row of batch output
type Record struct {
	File       string          `parquet:"file" yaml:"file"`
	Type       string          `parquet:"type" yaml:"type"`
	Summary    string          `parquet:"summary" yaml:"summary,omitempty"`
	Sections   []SectionRecord `parquet:"sections,list" yaml:"sections,omitempty"`
	Traits     []string        `parquet:"traits,list" yaml:"traits,omitempty"`
	Advice     string          `parquet:"advice" yaml:"advice,omitempty"`
	Error      string          `parquet:"error" yaml:"error,omitempty"`
	DurationMS int64           `parquet:"duration_ms" yaml:"durationms"`
}

// Options controls a batch run
type Options struct {
	Dir         string
	Type        models.ReadingType
	Concurrency int
}

// FindImages lists image files in dir by extension, sorted by name
func FindImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run reads every image in opts.Dir through its own session and returns one
// record per file, in file name order. Per-file failures are recorded, not returned.
func Run(ctx context.Context, analyzer session.Analyzer, opts Options) ([]Record, error) {
	if !opts.Type.Valid() {
		return nil, fmt.Errorf("invalid reading type %q", opts.Type)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	files, err := FindImages(opts.Dir)
	if err != nil {
		return nil, err
	}
	slog.Info("Starting batch readings", "dir", opts.Dir, "files", len(files), "type", opts.Type, "concurrency", opts.Concurrency)

	records := make([]Record, len(files))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, opts.Concurrency)

	for i, file := range files {
		wg.Add(1)
		go func(idx int, file string) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Info("Processing image", "file", file, "progress", fmt.Sprintf("%d/%d", idx+1, len(files)))
			records[idx] = readOne(ctx, analyzer, file, opts.Type)
		}(i, file)
	}

	wg.Wait()
	return records, nil
}

func readOne(ctx context.Context, analyzer session.Analyzer, file string, t models.ReadingType) Record {
	start := time.Now()
	rec := Record{File: filepath.Base(file), Type: string(t)}

	data, err := capture.ReadFile(file)
	if err != nil {
		rec.Error = err.Error()
		return finish(rec, start)
	}

	sess := session.New(rec.File, nil, analyzer)
	if err := sess.SelectReadingType(t); err != nil {
		rec.Error = err.Error()
		return finish(rec, start)
	}
	if err := sess.Upload(ctx, data); err != nil {
		slog.Warn("Reading failed", "file", file, "err", err)
		rec.Error = err.Error()
		return finish(rec, start)
	}

	snap := sess.Snapshot()
	if snap.Phase != session.PhaseResult {
		// an empty file is a no-op upload and leaves the session in SELECTING
		slog.Warn("No reading produced", "file", file, "phase", snap.Phase)
		rec.Error = capture.ErrEmpty.Error()
		if snap.LastError != "" {
			rec.Error = snap.LastError
		}
		return finish(rec, start)
	}
	rec.Summary = snap.Result.Summary
	rec.Traits = snap.Result.Traits
	rec.Advice = snap.Result.Advice
	for _, spec := range t.Sections() {
		s := snap.Result.Sections[spec.Key]
		rec.Sections = append(rec.Sections, SectionRecord{
			Key:         spec.Key,
			Title:       s.Title,
			Description: s.Description,
			Score:       s.Score,
		})
	}
	return finish(rec, start)
}

func finish(rec Record, start time.Time) Record {
	rec.DurationMS = time.Since(start).Milliseconds()
	return rec
}
