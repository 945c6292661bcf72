package phishing

import (
	"testing"

	"github.com/nao1215/riskscan/internal/model"
)

func categories(flags []model.PhishingFlag) []model.Category {
	out := make([]model.Category, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Category)
	}
	return out
}

func TestClassify(t *testing.T) {
	t.Parallel()

	c := New()
	testCases := []struct {
		name     string
		text     string
		expected []model.Category
	}{
		{
			name:     "empty",
			text:     "",
			expected: []model.Category{},
		},
		{
			name:     "benign",
			text:     "Thanks for lunch yesterday, see you next week.",
			expected: []model.Category{},
		},
		{
			name: "account suspension scam",
			text: "Your account will be suspended immediately. Click here to verify your password " +
				"within 24 hours or your data will be deleted.",
			expected: []model.Category{
				model.CategoryUrgency,
				model.CategoryCredentialRequest,
				model.CategoryCallToAction,
				model.CategoryDataLossThreat,
			},
		},
		{
			name: "payment threat",
			text: "URGENT: pay now to keep your subscription. Click here or your files will be deleted.",
			expected: []model.Category{
				model.CategoryUrgency,
				model.CategoryPaymentPressure,
				model.CategoryCallToAction,
				model.CategoryDataLossThreat,
			},
		},
		{
			name:     "gift card only",
			text:     "Please buy two Gift Cards for the office party.",
			expected: []model.Category{model.CategoryPaymentPressure},
		},
		{
			name:     "order follows declaration not position",
			text:     "Tap here. You will permanently lose access. Act now.",
			expected: []model.Category{model.CategoryUrgency, model.CategoryCallToAction, model.CategoryDataLossThreat},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := categories(c.Classify(tc.text))
			if len(got) != len(tc.expected) {
				t.Fatalf("got %v, expected %v", got, tc.expected)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("index %d: got %s, expected %s", i, got[i], tc.expected[i])
				}
			}
		})
	}
}

func TestClassifySeverities(t *testing.T) {
	t.Parallel()

	text := "Act now! Confirm your password, pay the fee, click here, or we delete your files."
	flags := New().Classify(text)
	expected := map[model.Category]model.Severity{
		model.CategoryUrgency:           model.SeverityMedium,
		model.CategoryCredentialRequest: model.SeverityHigh,
		model.CategoryPaymentPressure:   model.SeverityHigh,
		model.CategoryCallToAction:      model.SeverityMedium,
		model.CategoryDataLossThreat:    model.SeverityHigh,
	}
	if len(flags) != len(expected) {
		t.Fatalf("expected %d flags, got %+v", len(expected), flags)
	}
	for _, f := range flags {
		if f.Severity != expected[f.Category] {
			t.Errorf("%s: got severity %s, expected %s", f.Category, f.Severity, expected[f.Category])
		}
		if f.Match == "" || f.Description == "" {
			t.Errorf("%s: match and description must be set", f.Category)
		}
	}
}

func TestClassifyOneFlagPerCategory(t *testing.T) {
	t.Parallel()

	flags := New().Classify("Click here. Click here. Tap here. Click the link.")
	if len(flags) != 1 {
		t.Fatalf("expected a single flag, got %+v", flags)
	}
	if flags[0].Match != "Click here" {
		t.Errorf("expected first match to win, got %q", flags[0].Match)
	}
}

func TestHas(t *testing.T) {
	t.Parallel()

	flags := []model.PhishingFlag{{Category: model.CategoryUrgency}}
	if !Has(flags, model.CategoryUrgency) {
		t.Error("expected urgency")
	}
	if Has(flags, model.CategoryCallToAction) {
		t.Error("did not expect call to action")
	}
}
