package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/oracle/internal/capture"
	"github.com/lehigh-university-libraries/oracle/internal/models"
	"github.com/lehigh-university-libraries/oracle/internal/session"
	"gopkg.in/yaml.v3"
)

func faceResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary: "복이 많은 얼굴",
		Sections: map[string]models.AnalysisSection{
			"mouth":    {Title: "입", Description: "말년운이 좋다", Score: 77},
			"eyes":     {Title: "눈", Description: "맑다", Score: 140},
			"forehead": {Title: "이마", Description: "넓다", Score: 82.25},
			"nose":     {Title: "코", Description: "곧다", Score: -5},
		},
		Traits: []string{"리더십", "온화함"},
		Advice: "자신을 믿으세요.",
	}
}

func TestFromResultOrdersSections(t *testing.T) {
	v := FromResult(models.ReadingFace, faceResult())

	want := []string{"forehead", "eyes", "nose", "mouth"}
	if len(v.Sections) != len(want) {
		t.Fatalf("Expected %d sections, got %d", len(want), len(v.Sections))
	}
	for i, key := range want {
		if v.Sections[i].Key != key {
			t.Errorf("Expected section %d to be %s, got %s", i, key, v.Sections[i].Key)
		}
	}
	if v.Sections[1].Score != 140 {
		t.Errorf("Expected score to pass through unchanged, got %v", v.Sections[1].Score)
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, FromResult(models.ReadingFace, faceResult())); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"👤 관상 분석 결과",
		"복이 많은 얼굴",
		"■ 이마  강도: 82.3%",
		"■ 눈  강도: 100%",
		"■ 코  강도: 0%",
		"#리더십 #온화함",
		"\"자신을 믿으세요.\"",
		Disclaimer,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Index(out, "이마") > strings.Index(out, "입 ") {
		t.Error("Expected forehead before mouth")
	}
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := YAML(&buf, FromResult(models.ReadingFace, faceResult())); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded View
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid YAML: %v", err)
	}
	if decoded.Type != models.ReadingFace || len(decoded.Sections) != 4 {
		t.Errorf("Unexpected decoded view: %+v", decoded)
	}
	if decoded.Sections[0].Title != "이마" || decoded.Sections[0].Key != "forehead" {
		t.Errorf("Expected inline section fields, got %+v", decoded.Sections[0])
	}
}

func TestNewView(t *testing.T) {
	if _, err := NewView(session.Snapshot{Phase: session.PhaseAnalyzing}); err == nil {
		t.Error("Expected error outside RESULT")
	}

	v, err := NewView(session.Snapshot{
		Phase:       session.PhaseResult,
		ReadingType: models.ReadingFace,
		Result:      faceResult(),
		Image:       &capture.Image{MIMEType: "image/jpeg", Width: 640, Height: 480},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v.Image != "image/jpeg 640x480" {
		t.Errorf("Unexpected image line %q", v.Image)
	}
}
