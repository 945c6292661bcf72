// Package database stores analysis history in SQLite.
//
// Only masked data is written: the report JSON (which never contains the raw
// text) and a SHA3-256 fingerprint of the normalized text, so repeated
// submissions of the same content can be recognized without keeping it.
// The driver is modernc.org/sqlite, which needs no CGO.
package database
