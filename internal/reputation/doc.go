// Package reputation inspects URL hosts for lookalike and impersonation signals.
//
// Checks are static: no DNS lookups or network calls are made. The lookup
// tables (public suffixes, suspicious TLDs, brand official domains) are built
// once and only read afterwards, so an Analyzer is safe for concurrent use.
package reputation
