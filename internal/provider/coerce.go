package provider

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/nao1215/riskscan/internal/model"
)

// Caps applied while coercing a model payload.
const (
	maxModelListItems  = 12
	maxModelStringSize = 400
)

// ParseAssessment recovers a ModelAssessment from a model reply. Code fences
// and surrounding prose are stripped. Each field is coerced on its own:
// missing or mistyped fields become zero values instead of failing the parse.
// Both camelCase and snake_case keys are accepted.
func ParseAssessment(content string) (*model.ModelAssessment, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, ErrMalformedPayload
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, ErrMalformedPayload
	}

	return &model.ModelAssessment{
		RiskScore:          coerceScore(pick(raw, "riskScore", "risk_score", "score")),
		Verdict:            coerceString(pick(raw, "verdict", "label")),
		Summary:            coerceString(pick(raw, "summary", "explanation")),
		Findings:           coerceStrings(pick(raw, "findings", "red_flags", "redFlags")),
		FlaggedSegments:    coerceStrings(pick(raw, "flaggedSegments", "flagged_segments", "segments")),
		RecommendedActions: coerceStrings(pick(raw, "recommendedActions", "recommended_actions", "actions")),
		EvidenceSources:    coerceEvidence(pick(raw, "evidenceSources", "evidence_sources", "evidence", "sources")),
	}, nil
}

func pick(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// coerceScore accepts numbers and numeric strings. Fractions in (0, 1) are
// read as probabilities. The result is clamped to 0-100.
func coerceScore(v any) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > 0 && f < 1 {
		f *= 100
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return truncateString(strings.TrimSpace(t))
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func coerceStrings(v any) []string {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case string:
		items = []any{t}
	default:
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch it := item.(type) {
		case map[string]any:
			s = coerceString(pick(it, "text", "description", "title"))
		default:
			s = coerceString(it)
		}
		if s != "" {
			out = append(out, s)
		}
		if len(out) == maxModelListItems {
			break
		}
	}
	return out
}

func coerceEvidence(v any) []model.EvidenceSource {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]model.EvidenceSource, 0, len(items))
	for _, item := range items {
		var e model.EvidenceSource
		switch it := item.(type) {
		case string:
			e.URL = truncateString(strings.TrimSpace(it))
			e.Title = e.URL
		case map[string]any:
			e.Title = coerceString(pick(it, "title", "name"))
			e.URL = coerceString(pick(it, "url", "link", "href"))
			e.Snippet = coerceString(pick(it, "snippet", "description", "summary"))
		default:
			continue
		}
		if e.Title == "" && e.URL == "" {
			continue
		}
		out = append(out, e)
		if len(out) == maxModelListItems {
			break
		}
	}
	return out
}

func truncateString(s string) string {
	runes := []rune(s)
	if len(runes) <= maxModelStringSize {
		return s
	}
	return string(runes[:maxModelStringSize])
}
