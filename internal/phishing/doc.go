// Package phishing flags scam language in normalized text.
//
// Five categories of phrasing are recognised: urgency, credential requests,
// payment pressure, calls to action, and data-loss threats. Each category
// fires at most once per text with a fixed severity.
package phishing
