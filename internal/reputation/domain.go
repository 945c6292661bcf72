package reputation

import (
	"net"
	"strings"
)

// multiLabelSuffixes are public suffixes made of two labels. A host ending in
// one of these keeps three labels as its registrable domain.
var multiLabelSuffixes = map[string]struct{}{
	"co.uk": {}, "org.uk": {}, "gov.uk": {}, "ac.uk": {}, "me.uk": {}, "ltd.uk": {}, "plc.uk": {}, "net.uk": {}, "nhs.uk": {}, "sch.uk": {},
	"com.au": {}, "net.au": {}, "org.au": {}, "edu.au": {}, "gov.au": {}, "id.au": {},
	"co.nz": {}, "org.nz": {}, "govt.nz": {}, "ac.nz": {},
	"co.jp": {}, "ne.jp": {}, "or.jp": {}, "ac.jp": {}, "go.jp": {},
	"com.br": {}, "net.br": {}, "org.br": {}, "gov.br": {},
	"com.cn": {}, "net.cn": {}, "org.cn": {}, "gov.cn": {},
	"co.in": {}, "net.in": {}, "org.in": {}, "gov.in": {}, "ac.in": {},
	"co.za": {}, "org.za": {}, "gov.za": {},
	"com.mx": {}, "org.mx": {}, "gob.mx": {},
	"co.kr": {}, "or.kr": {}, "go.kr": {},
	"com.tw": {}, "org.tw": {}, "gov.tw": {},
	"com.hk": {}, "org.hk": {}, "gov.hk": {},
	"com.sg": {}, "org.sg": {}, "gov.sg": {},
	"com.tr": {}, "org.tr": {}, "gov.tr": {},
	"com.ar": {}, "com.co": {}, "com.pe": {}, "com.ve": {},
	"com.my": {}, "com.ph": {}, "com.vn": {}, "com.pk": {}, "com.ng": {}, "com.eg": {}, "com.sa": {},
	"co.id": {}, "co.il": {}, "co.th": {}, "co.ke": {},
}

// RegistrableDomain returns the part of host a registrant controls.
// The last three labels are kept when the last two form a known multi-label
// suffix; otherwise the last two. IP literals and single labels are returned unchanged.
func RegistrableDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" || net.ParseIP(strings.Trim(host, "[]")) != nil {
		return host
	}
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	lastTwo := labels[len(labels)-2] + "." + labels[len(labels)-1]
	if _, ok := multiLabelSuffixes[lastTwo]; ok {
		return strings.Join(labels[len(labels)-3:], ".")
	}
	return lastTwo
}

// splitRegistrable splits a registrable domain into its first label and the
// suffix that follows it ("example.co.uk" → "example", "co.uk").
func splitRegistrable(domain string) (string, string) {
	label, suffix, found := strings.Cut(domain, ".")
	if !found {
		return domain, ""
	}
	return label, suffix
}

// isIPv4 reports whether host is a dotted-quad IPv4 literal.
func isIPv4(host string) bool {
	if strings.Count(host, ".") != 3 {
		return false
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.To4() != nil
}

// isIPLiteral reports whether host is any IP address.
func isIPLiteral(host string) bool {
	return net.ParseIP(strings.Trim(host, "[]")) != nil
}
