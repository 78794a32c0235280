package models

import (
	"fmt"
	"strings"
)

// ReadingType selects which body region is read
type ReadingType string

const (
	ReadingPalm ReadingType = "PALM"
	ReadingFace ReadingType = "FACE"
)

// ParseReadingType accepts "palm"/"face" in any case
func ParseReadingType(s string) (ReadingType, error) {
	switch ReadingType(strings.ToUpper(strings.TrimSpace(s))) {
	case ReadingPalm:
		return ReadingPalm, nil
	case ReadingFace:
		return ReadingFace, nil
	default:
		return "", fmt.Errorf("invalid reading type %q: must be 'palm' or 'face'", s)
	}
}

func (t ReadingType) Valid() bool {
	return t == ReadingPalm || t == ReadingFace
}

// SectionSpec names one of the four fixed sections requested for a reading type
type SectionSpec struct {
	Key   string
	Label string
	Topic string
}

var palmSections = []SectionSpec{
	{Key: "life_line", Label: "생명선", Topic: "건강, 장수"},
	{Key: "head_line", Label: "두뇌선", Topic: "지능, 사고방식"},
	{Key: "heart_line", Label: "감정선", Topic: "애정운, 인간관계"},
	{Key: "fate_line", Label: "운명선", Topic: "성공, 전환점"},
}

var faceSections = []SectionSpec{
	{Key: "forehead", Label: "이마", Topic: "초년운, 부모복"},
	{Key: "eyes", Label: "눈", Topic: "성격, 기질"},
	{Key: "nose", Label: "코", Topic: "재물운, 성공운"},
	{Key: "mouth", Label: "입", Topic: "말년운, 사회성"},
}

// Sections returns the section specs for t in display order
func (t ReadingType) Sections() []SectionSpec {
	var src []SectionSpec
	switch t {
	case ReadingPalm:
		src = palmSections
	case ReadingFace:
		src = faceSections
	default:
		return nil
	}
	out := make([]SectionSpec, len(src))
	copy(out, src)
	return out
}

// Title is the heading shown above a finished reading
func (t ReadingType) Title() string {
	if t == ReadingFace {
		return "👤 관상 분석 결과"
	}
	return "✨ 손금 분석 결과"
}

// Hint is the preparation advice shown while choosing how to provide the photo
func (t ReadingType) Hint() string {
	if t == ReadingFace {
		return "정면 얼굴이 가려지지 않게 밝은 곳에서 찍어주세요."
	}
	return "밝은 곳에서 손바닥 전체가 잘 보이게 찍어주세요."
}

// AnalysisSection is one scored part of a reading. Score is intended to be 0-100
// but is passed through as the model returned it.
type AnalysisSection struct {
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Score       float64 `json:"score" yaml:"score"`
}

// AnalysisResult is a validated reading
type AnalysisResult struct {
	Summary  string                     `json:"summary" yaml:"summary"`
	Sections map[string]AnalysisSection `json:"sections" yaml:"sections"`
	Traits   []string                   `json:"traits" yaml:"traits"`
	Advice   string                     `json:"advice" yaml:"advice"`
}

// Clone returns a deep copy so callers cannot mutate a stored result
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := &AnalysisResult{
		Summary:  r.Summary,
		Advice:   r.Advice,
		Sections: make(map[string]AnalysisSection, len(r.Sections)),
		Traits:   append([]string(nil), r.Traits...),
	}
	for k, v := range r.Sections {
		out.Sections[k] = v
	}
	return out
}
