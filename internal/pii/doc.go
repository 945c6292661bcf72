// Package pii detects personal data in text and replaces it with masked forms.
//
// Detection runs four passes in a fixed order (email, phone, SSN, payment
// card) over progressively masked text, so a span consumed by an earlier pass
// cannot be counted again. Masked forms keep at most the last four digits
// (emails keep the first and last character of the local part and the
// domain), and running the detector over its own output finds nothing new.
package pii
