package batch

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lehigh-university-libraries/oracle/internal/capture"
	"github.com/lehigh-university-libraries/oracle/internal/models"
	"github.com/lehigh-university-libraries/oracle/internal/oracle"
	"gopkg.in/yaml.v3"
)

type stubAnalyzer struct {
	calls atomic.Int32
}

func (a *stubAnalyzer) Analyze(ctx context.Context, img *capture.Image, t models.ReadingType) (*models.AnalysisResult, error) {
	a.calls.Add(1)
	if img.Width > 10 {
		return nil, &oracle.AnalysisFailure{Cause: errors.New("model refused")}
	}
	sections := map[string]models.AnalysisSection{}
	for i, s := range t.Sections() {
		sections[s.Key] = models.AnalysisSection{Title: s.Label, Description: "d", Score: float64(50 + 10*i)}
	}
	return &models.AnalysisResult{Summary: "s", Sections: sections, Traits: []string{"a", "b"}, Advice: "adv"}, nil
}

func writePNG(t *testing.T, path string, w int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, w))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 4)
	writePNG(t, filepath.Join(dir, "b.PNG"), 4)
	writePNG(t, filepath.Join(dir, "c.png"), 20)
	if err := os.WriteFile(filepath.Join(dir, "d.jpg"), []byte("not really a jpeg"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestFindImages(t *testing.T) {
	files, err := FindImages(setupDir(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 {
		t.Errorf("Expected 4 image files, got %v", files)
	}

	if _, err := FindImages(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestRun(t *testing.T) {
	an := &stubAnalyzer{}
	records, err := Run(context.Background(), an, Options{Dir: setupDir(t), Type: models.ReadingPalm, Concurrency: 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(records))
	}

	byFile := map[string]Record{}
	for _, r := range records {
		byFile[r.File] = r
	}

	ok := byFile["a.png"]
	if ok.Error != "" || len(ok.Sections) != 4 || ok.Sections[0].Key != "life_line" {
		t.Errorf("Unexpected record for a.png: %+v", ok)
	}
	if byFile["c.png"].Error != oracle.FailureMessage {
		t.Errorf("Expected analysis failure for c.png, got %q", byFile["c.png"].Error)
	}
	if byFile["d.jpg"].Error == "" {
		t.Error("Expected non-image d.jpg to fail")
	}
	if got := an.calls.Load(); got != 3 {
		t.Errorf("Expected 3 analyzer calls, got %d", got)
	}

	s := Summarize(records)
	if s.Total != 4 || s.Succeeded != 2 || s.Failed != 2 {
		t.Errorf("Unexpected summary: %+v", s)
	}
	if s.MeanScore != 65 {
		t.Errorf("Expected mean score 65, got %v", s.MeanScore)
	}
}

func TestRunEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 4)
	if err := os.WriteFile(filepath.Join(dir, "empty.jpg"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	an := &stubAnalyzer{}
	records, err := Run(context.Background(), an, Options{Dir: dir, Type: models.ReadingPalm, Concurrency: 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	empty := records[1]
	if empty.File != "empty.jpg" || empty.Error != capture.ErrEmpty.Error() {
		t.Errorf("Expected empty file error, got %+v", empty)
	}
	if empty.Summary != "" || len(empty.Sections) != 0 {
		t.Errorf("Expected no reading for empty file, got %+v", empty)
	}
	if records[0].Error != "" {
		t.Errorf("Expected a.png to succeed, got %q", records[0].Error)
	}
	if got := an.calls.Load(); got != 1 {
		t.Errorf("Expected 1 analyzer call, got %d", got)
	}
}

func TestRunInvalidType(t *testing.T) {
	if _, err := Run(context.Background(), &stubAnalyzer{}, Options{Dir: t.TempDir()}); err == nil {
		t.Error("Expected error for missing reading type")
	}
}

func TestSaveParquetRoundTrip(t *testing.T) {
	records, err := Run(context.Background(), &stubAnalyzer{}, Options{Dir: setupDir(t), Type: models.ReadingFace, Concurrency: 1})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out", "readings.parquet")
	if err := SaveParquet(path, records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	loaded, err := LoadParquet(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("Expected %d rows, got %d", len(records), len(loaded))
	}
	if loaded[0].File != records[0].File || len(loaded[0].Sections) != 4 || loaded[0].Sections[1].Key != "eyes" {
		t.Errorf("Unexpected first row: %+v", loaded[0])
	}
	if len(loaded[0].Traits) != 2 {
		t.Errorf("Expected traits to survive, got %v", loaded[0].Traits)
	}
}

func TestSaveYAML(t *testing.T) {
	records := []Record{
		{File: "a.png", Type: "PALM", Summary: "s", Sections: []SectionRecord{{Key: "life_line", Score: 80}}},
		{File: "b.png", Type: "PALM", Error: "failed"},
	}
	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := SaveYAML(path, RunConfig{Provider: "gemini", Model: "m", Type: "PALM"}, records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		t.Fatalf("Invalid YAML: %v", err)
	}
	if report.Config.Timestamp == "" || report.Summary.Failed != 1 || report.Summary.MeanScore != 80 {
		t.Errorf("Unexpected report: %+v", report)
	}
}

func TestPrintReport(t *testing.T) {
	records := []Record{
		{File: "a.png", Type: "PALM", Summary: "강인한 생명력", Sections: []SectionRecord{{Key: "life_line", Title: "생명선", Score: 80}}},
		{File: "b.png", Type: "PALM", Error: "분석 중 오류가 발생했습니다."},
	}

	var buf bytes.Buffer
	if err := PrintReport(&buf, records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Total:      2", "Failed:     1", "Mean score: 80.0", "[1] a.png", "생명선: 80", "❌ Error: 분석 중 오류가 발생했습니다."} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out)
		}
	}
}
