package model

import "fmt"

// Category identifies a family of phishing language.
type Category int

const (
	// CategoryUrgency covers time pressure ("within 24 hours", "immediately").
	CategoryUrgency Category = iota
	// CategoryCredentialRequest covers requests for passwords, codes or logins.
	CategoryCredentialRequest
	// CategoryPaymentPressure covers demands for payment, gift cards or crypto.
	CategoryPaymentPressure
	// CategoryCallToAction covers "click here" style link prompts.
	CategoryCallToAction
	// CategoryDataLossThreat covers threats to delete, lock or leak data.
	CategoryDataLossThreat
)

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryUrgency,
		CategoryCredentialRequest,
		CategoryPaymentPressure,
		CategoryCallToAction,
		CategoryDataLossThreat,
	}
}

// String returns the identifier used in JSON and storage.
func (c Category) String() string {
	switch c {
	case CategoryUrgency:
		return "urgency"
	case CategoryCredentialRequest:
		return "credential_request"
	case CategoryPaymentPressure:
		return "payment_pressure"
	case CategoryCallToAction:
		return "call_to_action"
	case CategoryDataLossThreat:
		return "data_loss_threat"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	for _, known := range Categories() {
		if known.String() == string(text) {
			*c = known
			return nil
		}
	}
	return fmt.Errorf("unknown phishing category %q", string(text))
}

// PhishingFlag records that a category of phishing language was found.
// At most one flag exists per category in a single analysis.
type PhishingFlag struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	// Match is the first phrase that triggered the flag.
	Match string `json:"match,omitempty"`
}

// LookalikeMatch is one suspicious property of a URL's host.
// A single URL can produce several matches with different reasons.
type LookalikeMatch struct {
	SourceURL string   `json:"source_url"`
	Hostname  string   `json:"hostname"`
	Reason    string   `json:"reason"`
	Severity  Severity `json:"severity"`
}

// PIIKind identifies a class of personal data.
type PIIKind string

// PII kinds in detection order.
const (
	PIIEmail      PIIKind = "email"
	PIIPhone      PIIKind = "phone"
	PIISSN        PIIKind = "ssn"
	PIICreditCard PIIKind = "credit_card"
)

// PIIDetection summarises all matches of one kind.
type PIIDetection struct {
	Kind  PIIKind `json:"kind"`
	Count int     `json:"count"`
	// MaskedExamples holds at most three masked matches. Raw values are never kept.
	MaskedExamples []string `json:"masked_examples"`
}

// PIIResult is the output of the PII detector.
type PIIResult struct {
	MaskedText string         `json:"masked_text"`
	Detections []PIIDetection `json:"detections"`
	TotalCount int            `json:"total_count"`
}

// TrackerEntry is one record of the tracker directory.
type TrackerEntry struct {
	Domain   string `json:"domain"`
	Owner    string `json:"owner,omitempty"`
	Category string `json:"category,omitempty"`
}

// TrackerMatch is a third-party resource whose host belongs to a known tracker.
type TrackerMatch struct {
	ResourceURL   string `json:"resource_url"`
	Hostname      string `json:"hostname"`
	TrackerDomain string `json:"tracker_domain"`
	Owner         string `json:"owner,omitempty"`
	Category      string `json:"category,omitempty"`
}

// TrackerAudit is the output of the tracker auditor.
type TrackerAudit struct {
	PrimaryDomain       string         `json:"primary_domain,omitempty"`
	ThirdPartyResources []string       `json:"third_party_resources"`
	TrackerMatches      []TrackerMatch `json:"tracker_matches"`
	// TrackersFoundCount counts distinct tracker domains, not match occurrences.
	TrackersFoundCount int `json:"trackers_found_count"`
	ThirdPartyCount    int `json:"third_party_count"`
}

// ImageFinding is a privacy-relevant metadata tag found in an image upload.
type ImageFinding struct {
	Tag         string `json:"tag"`
	Description string `json:"description"`
	// Value is already masked when it could identify a person or device.
	Value string `json:"value,omitempty"`
}
