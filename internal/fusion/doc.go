// Package fusion combines analyzer outputs into a single risk verdict.
//
// Sub-scores are computed for phishing, PII and privacy exposure and blended
// into a heuristic index. A critical scam pattern raises the index to a
// floor. When an external model assessment carries signal, its score is
// blended with the heuristic index. Findings, flagged segments, actions and
// evidence from both sources are merged, deduplicated and capped.
//
// Every weight, bonus, floor and blend factor lives in Weights so that they
// can be tuned from configuration.
package fusion
