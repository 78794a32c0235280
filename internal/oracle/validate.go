package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/oracle/internal/models"
)

var topLevelKeys = []string{"summary", "sections", "traits", "advice"}
var sectionKeys = []string{"title", "description", "score"}

// parseResult decodes a model answer into an AnalysisResult, requiring every
// key of the shape and exactly the four section keys of t.
func parseResult(response string, t models.ReadingType) (*models.AnalysisResult, error) {
	response = trimCodeFence(response)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	if err := requireKeys(raw, topLevelKeys, "result"); err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{}
	if err := json.Unmarshal(raw["summary"], &result.Summary); err != nil {
		return nil, fmt.Errorf("invalid summary: %w", err)
	}
	if err := json.Unmarshal(raw["advice"], &result.Advice); err != nil {
		return nil, fmt.Errorf("invalid advice: %w", err)
	}
	if err := json.Unmarshal(raw["traits"], &result.Traits); err != nil {
		return nil, fmt.Errorf("invalid traits: %w", err)
	}
	if result.Traits == nil {
		return nil, fmt.Errorf("invalid traits: null")
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw["sections"], &sections); err != nil {
		return nil, fmt.Errorf("invalid sections: %w", err)
	}
	specs := t.Sections()
	if len(sections) != len(specs) {
		return nil, fmt.Errorf("expected %d sections, got %d", len(specs), len(sections))
	}

	result.Sections = make(map[string]models.AnalysisSection, len(specs))
	for _, spec := range specs {
		data, ok := sections[spec.Key]
		if !ok {
			return nil, fmt.Errorf("missing section %q", spec.Key)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("invalid section %q: %w", spec.Key, err)
		}
		if err := requireKeys(fields, sectionKeys, "section "+spec.Key); err != nil {
			return nil, err
		}
		var section models.AnalysisSection
		if err := json.Unmarshal(data, &section); err != nil {
			return nil, fmt.Errorf("invalid section %q: %w", spec.Key, err)
		}
		result.Sections[spec.Key] = section
	}

	return result, nil
}

func requireKeys(m map[string]json.RawMessage, keys []string, where string) error {
	if m == nil {
		return fmt.Errorf("%s is not an object", where)
	}
	for _, k := range keys {
		v, ok := m[k]
		if !ok || string(v) == "null" {
			return fmt.Errorf("%s: missing required key %q", where, k)
		}
	}
	return nil
}

// trimCodeFence strips a markdown code block some models wrap JSON in
func trimCodeFence(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
