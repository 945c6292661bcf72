// Package tracker classifies page resources as first or third party and
// matches third-party hosts against a directory of known trackers.
//
// The directory is a JSON array whose items are either objects
// ({"domain", "owner", "category"}) or bare domain strings. A copy is
// embedded in the binary; a file on disk can replace it. When the
// configured directory is missing, malformed or empty, a small built-in
// list is used instead and a warning is logged.
package tracker
