package model

import "testing"

func TestParseInputType(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		expected InputType
		wantErr  bool
	}{
		{"", InputText, false},
		{"text", InputText, false},
		{"URL", InputURL, false},
		{"image", InputImage, false},
		{"video", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseInputType(tc.name)
			if (err != nil) != tc.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestModelAssessmentHasSignal(t *testing.T) {
	t.Parallel()

	var nilAssessment *ModelAssessment
	if nilAssessment.HasSignal() {
		t.Error("nil assessment should have no signal")
	}
	if (&ModelAssessment{}).HasSignal() {
		t.Error("empty assessment should have no signal")
	}
	if !(&ModelAssessment{Summary: "looks fine"}).HasSignal() {
		t.Error("summary should count as signal")
	}
	if !(&ModelAssessment{RiskScore: 3}).HasSignal() {
		t.Error("non-zero score should count as signal")
	}
}

func TestReportAddWarning(t *testing.T) {
	t.Parallel()

	r := NewReport(&Request{InputType: InputURL})
	r.AddWarning("ocr unavailable")
	r.AddWarning("ocr unavailable")
	if len(r.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(r.Warnings))
	}
	if r.InputType != InputURL {
		t.Errorf("got input type %q, expected %q", r.InputType, InputURL)
	}
}

func TestCategoriesOrder(t *testing.T) {
	t.Parallel()

	cats := Categories()
	if len(cats) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(cats))
	}
	for i, c := range cats {
		if int(c) != i {
			t.Errorf("category %s at position %d", c, i)
		}
	}
}
