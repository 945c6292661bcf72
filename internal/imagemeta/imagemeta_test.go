package imagemeta

import (
	"testing"

	exif "github.com/dsoprea/go-exif/v3"
)

func TestInspectWithoutExif(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("not an image at all")},
		{"png header", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Inspect(tc.data); len(got) != 0 {
				t.Errorf("expected no findings, got %+v", got)
			}
		})
	}
}

func TestInspectTags(t *testing.T) {
	t.Parallel()

	entries := []exif.ExifTag{
		{TagName: "GPSLatitude", Formatted: "[35/1 39/1 0/1]"},
		{TagName: "GPSLongitude", Formatted: "[139/1 41/1 0/1]"},
		{TagName: "Make", Formatted: "Canon"},
		{TagName: "Model", Formatted: "EOS R5"},
		{TagName: "BodySerialNumber", Formatted: "0123456789"},
		{TagName: "Artist", Formatted: "Jane Roe"},
		{TagName: "ExposureTime", Formatted: "1/200"},
		{TagName: "HostComputer", Formatted: ""},
	}
	got := inspectTags(entries)

	expected := map[string]string{
		"gps":           "present",
		"camera":        "Canon EOS R5",
		"serial_number": "****6789",
		"author":        "J***",
	}
	if len(got) != len(expected) {
		t.Fatalf("got %+v", got)
	}
	for _, f := range got {
		if want, ok := expected[f.Tag]; !ok || f.Value != want {
			t.Errorf("%s: got %q, expected %q", f.Tag, f.Value, want)
		}
		if f.Description == "" {
			t.Errorf("%s: missing description", f.Tag)
		}
	}
	if got[0].Tag != "gps" {
		t.Errorf("findings must follow tag order, got %s first", got[0].Tag)
	}
}

func TestMaskSerial(t *testing.T) {
	t.Parallel()

	if got := maskSerial("123"); got != "****" {
		t.Errorf("got %q", got)
	}
	if got := maskSerial("SN-998877"); got != "****8877" {
		t.Errorf("got %q", got)
	}
}
