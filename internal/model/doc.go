// Package model defines the data structures shared by the riskscan analyzers.
//
// This package contains the following main types:
//   - Request: a caller submission (text, URL or image)
//   - AnalysisInput: the normalized, immutable view every analyzer reads
//   - PhishingFlag, LookalikeMatch, PIIResult, TrackerAudit: analyzer outputs
//   - ModelAssessment: the optional external model opinion
//   - FusedResult: the final verdict with sub-scores and evidence
//   - Report: everything produced for one request, ready for output or storage
//
// Every value is built fresh per request and is never shared across requests.
package model
