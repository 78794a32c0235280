package oracle

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/oracle/internal/models"
	"github.com/lehigh-university-libraries/oracle/internal/providers"
)

const palmPersona = "당신은 30년 경력의 신비롭고 예리한 전문 손금 관상가입니다."
const facePersona = "당신은 30년 경력의 전설적인 동양 관상가입니다."

// buildSystemPrompt returns the fixed instruction template for t
func buildSystemPrompt(t models.ReadingType) string {
	persona, subject, noun := palmPersona, "손바닥", "해석"
	if t == models.ReadingFace {
		persona, subject, noun = facePersona, "얼굴", "관상"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", persona)
	fmt.Fprintf(&b, "사용자가 업로드한 %s 사진을 분석하여 다음 항목들에 대한 상세한 %s을 제공해주세요.\n", subject, noun)
	for i, s := range t.Sections() {
		fmt.Fprintf(&b, "%d. %s (%s) - JSON 키: %s\n", i+1, s.Label, s.Topic, s.Key)
	}
	b.WriteString("각 항목의 score는 0에서 100 사이의 숫자로 표현하세요.\n")
	b.WriteString("반드시 한국어로 응답하며 JSON 형식을 따르세요.")
	return b.String()
}

// buildUserPrompt is the text sent alongside the photo
func buildUserPrompt(t models.ReadingType) string {
	if t == models.ReadingFace {
		return "이 얼굴 사진의 관상을 봐주세요."
	}
	return "이 손바닥 사진의 손금을 봐주세요."
}

// buildSchema describes the AnalysisResult shape for t
func buildSchema(t models.ReadingType) *providers.Schema {
	sections := &providers.Schema{
		Type:       "object",
		Properties: map[string]*providers.Schema{},
	}
	for _, s := range t.Sections() {
		sections.Properties[s.Key] = &providers.Schema{
			Type: "object",
			Properties: map[string]*providers.Schema{
				"title":       {Type: "string", Description: s.Label},
				"description": {Type: "string"},
				"score":       {Type: "number", Description: "0-100"},
			},
			Required: []string{"title", "description", "score"},
		}
		sections.Required = append(sections.Required, s.Key)
	}

	return &providers.Schema{
		Type: "object",
		Properties: map[string]*providers.Schema{
			"summary":  {Type: "string"},
			"sections": sections,
			"traits":   {Type: "array", Items: &providers.Schema{Type: "string"}},
			"advice":   {Type: "string"},
		},
		Required: []string{"summary", "sections", "traits", "advice"},
	}
}
