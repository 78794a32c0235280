// Package render presents a finished reading.
package render

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/oracle/internal/models"
	"github.com/lehigh-university-libraries/oracle/internal/session"
	"gopkg.in/yaml.v3"
)

// Disclaimer is printed under every reading
const Disclaimer = "재미로 보는 운세입니다. 진지한 상담은 전문가와 상의하세요."

// Section is one section in display order
type Section struct {
	Key                    string `yaml:"key"`
	models.AnalysisSection `yaml:",inline"`
}

// View is a reading ready to display
type View struct {
	Type     models.ReadingType `yaml:"type"`
	Title    string             `yaml:"title"`
	Summary  string             `yaml:"summary"`
	Sections []Section          `yaml:"sections"`
	Traits   []string           `yaml:"traits"`
	Advice   string             `yaml:"advice"`
	Image    string             `yaml:"image,omitempty"`
}

// NewView builds a view from a session in RESULT
func NewView(snap session.Snapshot) (*View, error) {
	if snap.Phase != session.PhaseResult || snap.Result == nil {
		return nil, fmt.Errorf("no reading to render in phase %s", snap.Phase)
	}
	v := FromResult(snap.ReadingType, snap.Result)
	if snap.Image != nil {
		v.Image = fmt.Sprintf("%s %dx%d", snap.Image.MIMEType, snap.Image.Width, snap.Image.Height)
	}
	return v, nil
}

// FromResult orders the sections by the reading type's fixed key order.
// Keys the type does not know are appended alphabetically.
func FromResult(t models.ReadingType, r *models.AnalysisResult) *View {
	v := &View{
		Type:    t,
		Title:   t.Title(),
		Summary: r.Summary,
		Traits:  append([]string(nil), r.Traits...),
		Advice:  r.Advice,
	}

	seen := make(map[string]bool, len(r.Sections))
	for _, spec := range t.Sections() {
		if s, ok := r.Sections[spec.Key]; ok {
			v.Sections = append(v.Sections, Section{Key: spec.Key, AnalysisSection: s})
			seen[spec.Key] = true
		}
	}
	var extra []string
	for k := range r.Sections {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		v.Sections = append(v.Sections, Section{Key: k, AnalysisSection: r.Sections[k]})
	}
	return v
}

// Text writes the reading for a terminal
func Text(w io.Writer, v *View) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", v.Title)
	if v.Image != "" {
		fmt.Fprintf(&b, "(%s)\n", v.Image)
	}
	fmt.Fprintf(&b, "\n%s\n\n", v.Summary)

	for _, s := range v.Sections {
		fmt.Fprintf(&b, "■ %s  강도: %s%%\n", s.Title, formatScore(s.Score))
		if s.Description != "" {
			fmt.Fprintf(&b, "  %s\n", s.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("✨ 당신의 주요 기질\n")
	tags := make([]string, 0, len(v.Traits))
	for _, t := range v.Traits {
		tags = append(tags, "#"+t)
	}
	fmt.Fprintf(&b, "%s\n\n", strings.Join(tags, " "))
	fmt.Fprintf(&b, "\"%s\"\n\n", v.Advice)
	fmt.Fprintf(&b, "%s\n", Disclaimer)

	_, err := io.WriteString(w, b.String())
	return err
}

// YAML writes the reading as a YAML document
func YAML(w io.Writer, v *View) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}
	return enc.Close()
}

// formatScore clamps to 0-100 for display only; the stored score is untouched
func formatScore(score float64) string {
	if math.IsNaN(score) {
		return "0"
	}
	score = math.Max(0, math.Min(100, score))
	return fmt.Sprintf("%g", math.Round(score*10)/10)
}
