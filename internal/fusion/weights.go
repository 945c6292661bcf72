package fusion

import (
	"errors"
	"fmt"
	"math"

	"github.com/nao1215/riskscan/internal/model"
)

// Mode selects the verdict banding.
type Mode string

const (
	// ModeProtect bands scores into High/Medium/Low Risk.
	ModeProtect Mode = "protect"
	// ModeVerify bands scores for claim verification.
	ModeVerify Mode = "verify"
)

// ParseMode validates a mode name. An empty name means ModeProtect.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case "", ModeProtect:
		return ModeProtect, nil
	case ModeVerify:
		return ModeVerify, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

var (
	// ErrUnknownMode is returned for a banding mode other than protect or verify.
	ErrUnknownMode = errors.New("unknown banding mode")
	// ErrInvalidWeights is returned when Weights fail validation.
	ErrInvalidWeights = errors.New("invalid fusion weights")
)

// Weights holds every tunable constant of the fusion stage.
type Weights struct {
	Severity model.SeverityWeights `yaml:"severity"`

	// LookalikeFactor scales lookalike severity weights into the phishing score.
	LookalikeFactor float64 `yaml:"lookalike_factor"`

	UrgencyCTABonus    int `yaml:"urgency_cta_bonus"`
	CredentialCTABonus int `yaml:"credential_cta_bonus"`
	PaymentCTABonus    int `yaml:"payment_cta_bonus"`
	LookalikeFlagBonus int `yaml:"lookalike_flag_bonus"`
	ManyURLsBonus      int `yaml:"many_urls_bonus"`
	ManyURLsThreshold  int `yaml:"many_urls_threshold"`

	PIIPerItem       int `yaml:"pii_per_item"`
	ThirdPartyWeight int `yaml:"third_party_weight"`
	TrackerWeight    int `yaml:"tracker_weight"`

	// Composite blend of the three sub-scores.
	PhishingShare float64 `yaml:"phishing_share"`
	PIIShare      float64 `yaml:"pii_share"`
	PrivacyShare  float64 `yaml:"privacy_share"`

	// HeuristicBlend and ModelBlend combine the heuristic index with a model score.
	HeuristicBlend float64 `yaml:"heuristic_blend"`
	ModelBlend     float64 `yaml:"model_blend"`

	// CriticalFloor is the minimum index when the critical scam pattern is present.
	CriticalFloor int `yaml:"critical_floor"`
	// LowConfidenceFloor replaces a bare zero when no model signal exists.
	LowConfidenceFloor int `yaml:"low_confidence_floor"`

	Bands Bands `yaml:"bands"`
}

// Bands are the verdict thresholds for each mode.
type Bands struct {
	HighRisk   int `yaml:"high_risk"`
	MediumRisk int `yaml:"medium_risk"`
	LikelyReal int `yaml:"likely_real"`
	Unverified int `yaml:"unverified"`
}

// DefaultWeights returns the stock fusion constants.
func DefaultWeights() Weights {
	return Weights{
		Severity:           model.DefaultSeverityWeights(),
		LookalikeFactor:    0.9,
		UrgencyCTABonus:    12,
		CredentialCTABonus: 15,
		PaymentCTABonus:    10,
		LookalikeFlagBonus: 10,
		ManyURLsBonus:      5,
		ManyURLsThreshold:  3,
		PIIPerItem:         18,
		ThirdPartyWeight:   8,
		TrackerWeight:      18,
		PhishingShare:      0.90,
		PIIShare:           0.07,
		PrivacyShare:       0.03,
		HeuristicBlend:     0.55,
		ModelBlend:         0.45,
		CriticalFloor:      97,
		LowConfidenceFloor: 1,
		Bands: Bands{
			HighRisk:   65,
			MediumRisk: 35,
			LikelyReal: 75,
			Unverified: 40,
		},
	}
}

// Validate checks that shares and blends are usable.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"lookalike_factor": w.LookalikeFactor,
		"phishing_share":   w.PhishingShare,
		"pii_share":        w.PIIShare,
		"privacy_share":    w.PrivacyShare,
		"heuristic_blend":  w.HeuristicBlend,
		"model_blend":      w.ModelBlend,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidWeights, name)
		}
	}
	if sum := w.HeuristicBlend + w.ModelBlend; math.Abs(sum-1) > 0.001 {
		return fmt.Errorf("%w: heuristic_blend and model_blend must sum to 1, got %.2f", ErrInvalidWeights, sum)
	}
	if sum := w.PhishingShare + w.PIIShare + w.PrivacyShare; sum <= 0 || sum > 1.001 {
		return fmt.Errorf("%w: sub-score shares must sum to (0, 1], got %.2f", ErrInvalidWeights, sum)
	}
	if w.CriticalFloor < 0 || w.CriticalFloor > 100 || w.LowConfidenceFloor < 0 || w.LowConfidenceFloor > 100 {
		return fmt.Errorf("%w: floors must be within 0-100", ErrInvalidWeights)
	}
	if w.Bands.MediumRisk > w.Bands.HighRisk || w.Bands.Unverified > w.Bands.LikelyReal {
		return fmt.Errorf("%w: band thresholds are out of order", ErrInvalidWeights)
	}
	return nil
}

// Verdict bands score under mode.
func (w Weights) Verdict(mode Mode, score int) string {
	if mode == ModeVerify {
		switch {
		case score >= w.Bands.LikelyReal:
			return "Likely Real"
		case score >= w.Bands.Unverified:
			return "Unverified"
		default:
			return "Likely Fake"
		}
	}
	switch {
	case score >= w.Bands.HighRisk:
		return "High Risk"
	case score >= w.Bands.MediumRisk:
		return "Medium Risk"
	default:
		return "Low Risk"
	}
}

// Clamp limits v to [0, 100].
func Clamp(v int) int {
	return max(0, min(100, v))
}

func roundClamp(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
