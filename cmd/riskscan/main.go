// Package main provides the entry point for the riskscan CLI.
//
// riskscan scores text, URLs and screenshots for scam and phishing intent
// and for privacy exposure (personal data and third-party tracking).
//
// Usage:
//
//	riskscan analyze "Your account will be suspended..."
//	riskscan analyze --url https://example.com/login
//	riskscan batch --list inputs.txt
//	riskscan serve --listen :8080
//
// See --help for all available options.
package main

// main is the entry point for riskscan.
func main() {
	Execute()
}
