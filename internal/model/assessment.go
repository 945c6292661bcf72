package model

// EvidenceSource is a reference supporting a verdict.
type EvidenceSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// ModelAssessment is the opinion of an external model.
// All fields are optional; missing values are zero.
type ModelAssessment struct {
	RiskScore          int              `json:"risk_score"`
	Verdict            string           `json:"verdict,omitempty"`
	Summary            string           `json:"summary,omitempty"`
	Findings           []string         `json:"findings,omitempty"`
	FlaggedSegments    []string         `json:"flagged_segments,omitempty"`
	RecommendedActions []string         `json:"recommended_actions,omitempty"`
	EvidenceSources    []EvidenceSource `json:"evidence_sources,omitempty"`
}

// HasSignal reports whether the assessment carries anything worth blending.
func (m *ModelAssessment) HasSignal() bool {
	if m == nil {
		return false
	}
	return m.RiskScore > 0 ||
		m.Summary != "" ||
		len(m.Findings) > 0 ||
		len(m.EvidenceSources) > 0
}

// SubScores are the per-dimension scores that feed the composite index.
type SubScores struct {
	Phishing int `json:"phishing"`
	PII      int `json:"pii"`
	Privacy  int `json:"privacy"`
}

// FusedResult is the final verdict for one analysis.
type FusedResult struct {
	RiskScore          int              `json:"risk_score"`
	Verdict            string           `json:"verdict"`
	Summary            string           `json:"summary"`
	Findings           []string         `json:"findings"`
	FlaggedSegments    []string         `json:"flagged_segments"`
	RecommendedActions []string         `json:"recommended_actions"`
	EvidenceSources    []EvidenceSource `json:"evidence_sources"`
	SubScores          SubScores        `json:"sub_scores"`
	// HeuristicScore is the composite index before any model blending.
	HeuristicScore int `json:"heuristic_score"`
	// ModelBlended is true when a model assessment changed the score.
	ModelBlended bool `json:"model_blended"`
	// CriticalPattern is true when the near-certain scam combination was present.
	CriticalPattern bool `json:"critical_pattern"`
}
