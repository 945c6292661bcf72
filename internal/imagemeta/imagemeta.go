// Package imagemeta inspects uploaded images for privacy-revealing EXIF metadata.
package imagemeta

import (
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/riskscan/internal/model"
)

// MaxImageSize is the largest image inspected.
const MaxImageSize = 10 << 20

// tagGroup describes one kind of revealing metadata.
type tagGroup struct {
	tag         string
	description string
	mask        func(string) string
}

// groups maps EXIF tag names to the finding they produce. Several tags share a
// group so that, for example, latitude and longitude yield a single GPS finding.
var groups = map[string]tagGroup{
	"GPSLatitude":        gpsGroup,
	"GPSLongitude":       gpsGroup,
	"GPSAltitude":        gpsGroup,
	"SerialNumber":       serialGroup,
	"CameraSerialNumber": serialGroup,
	"BodySerialNumber":   serialGroup,
	"LensSerialNumber":   serialGroup,
	"Artist":             authorGroup,
	"Author":             authorGroup,
	"XPAuthor":           authorGroup,
	"Copyright":          authorGroup,
	"OwnerName":          authorGroup,
	"CameraOwnerName":    authorGroup,
	"HostComputer": {
		tag:         "host_computer",
		description: "Image metadata names the computer that processed it",
		mask:        maskName,
	},
	"Make":  cameraGroup,
	"Model": cameraGroup,
}

var (
	gpsGroup = tagGroup{
		tag:         "gps",
		description: "Image metadata contains GPS coordinates revealing where it was taken",
		mask:        func(string) string { return "present" },
	}
	serialGroup = tagGroup{
		tag:         "serial_number",
		description: "Image metadata contains a device serial number",
		mask:        maskSerial,
	}
	authorGroup = tagGroup{
		tag:         "author",
		description: "Image metadata names the author or owner",
		mask:        maskName,
	}
	cameraGroup = tagGroup{
		tag:         "camera",
		description: "Image metadata identifies the camera or phone model",
		mask:        func(v string) string { return v },
	}
)

// Inspect extracts EXIF metadata from data and reports revealing tags.
// Images without EXIF, or that cannot be parsed, produce no findings.
func Inspect(data []byte) []model.ImageFinding {
	if len(data) == 0 || len(data) > MaxImageSize {
		return nil
	}
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}
	return inspectTags(entries)
}

func inspectTags(entries []exif.ExifTag) []model.ImageFinding {
	findings := make([]model.ImageFinding, 0)
	index := make(map[string]int)

	for _, entry := range entries {
		group, ok := groups[entry.TagName]
		if !ok {
			continue
		}
		value := strings.TrimSpace(strings.Trim(entry.Formatted, "\x00"))
		if value == "" {
			continue
		}
		masked := group.mask(value)
		if i, seen := index[group.tag]; seen {
			if group.tag == "camera" && !strings.Contains(findings[i].Value, masked) {
				findings[i].Value += " " + masked
			}
			continue
		}
		index[group.tag] = len(findings)
		findings = append(findings, model.ImageFinding{
			Tag:         group.tag,
			Description: group.description,
			Value:       masked,
		})
	}
	return findings
}

func maskSerial(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}

func maskName(v string) string {
	runes := []rune(v)
	if len(runes) == 0 {
		return ""
	}
	return string(runes[0]) + "***"
}
