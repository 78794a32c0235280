package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// RunConfig describes a batch run in the YAML output
type RunConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Type      string `yaml:"type"`
	Dir       string `yaml:"dir"`
	Timestamp string `yaml:"timestamp"`
}

// Summary counts successes and failures
type Summary struct {
	Total     int     `yaml:"total"`
	Succeeded int     `yaml:"succeeded"`
	Failed    int     `yaml:"failed"`
	MeanScore float64 `yaml:"meanscore"`
}

// Report is the YAML document written by SaveYAML
type Report struct {
	Config  RunConfig `yaml:"config"`
	Summary Summary   `yaml:"summary"`
	Results []Record  `yaml:"results"`
}

// Summarize counts records and averages section scores of successful readings
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	var total float64
	var n int
	for _, r := range records {
		if r.Error != "" {
			s.Failed++
			continue
		}
		s.Succeeded++
		for _, sec := range r.Sections {
			total += sec.Score
			n++
		}
	}
	if n > 0 {
		s.MeanScore = total / float64(n)
	}
	return s
}

// SaveParquet writes records to path
func SaveParquet(path string, records []Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

// LoadParquet reads records written by SaveParquet
func LoadParquet(path string) ([]Record, error) {
	records, err := parquet.ReadFile[Record](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet: %w", err)
	}
	return records, nil
}

// SaveYAML writes a report with config, summary and every record
func SaveYAML(path string, config RunConfig, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	defer f.Close()

	if err := WriteYAML(f, config, records); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}

// WriteYAML encodes the report to w
func WriteYAML(w io.Writer, config RunConfig, records []Record) error {
	if config.Timestamp == "" {
		config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	report := Report{
		Config:  config,
		Summary: Summarize(records),
		Results: records,
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return nil
}

// PrintReport writes a text report of records: the summary, then one block per file
func PrintReport(w io.Writer, records []Record) error {
	s := Summarize(records)

	var b strings.Builder
	b.WriteString("========================================\n")
	b.WriteString("Oracle Batch Report\n")
	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "Total:      %d\n", s.Total)
	fmt.Fprintf(&b, "Succeeded:  %d\n", s.Succeeded)
	fmt.Fprintf(&b, "Failed:     %d\n", s.Failed)
	fmt.Fprintf(&b, "Mean score: %.1f\n", s.MeanScore)

	for i, r := range records {
		fmt.Fprintf(&b, "\n[%d] %s (%s, %dms)\n", i+1, r.File, r.Type, r.DurationMS)
		if r.Error != "" {
			fmt.Fprintf(&b, "  ❌ Error: %s\n", r.Error)
			continue
		}
		fmt.Fprintf(&b, "  %s\n", r.Summary)
		for _, sec := range r.Sections {
			fmt.Fprintf(&b, "    %s: %g\n", sec.Title, sec.Score)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
