// Package main provides the entry point for the techspider CLI.
//
// Techspider identifies the technologies a website is built with.
// It drives headless Chromium sessions over a bounded crawl of the
// target site and extracts the signals technology fingerprinting needs.
//
// Usage:
//
//	techspider scan <url>
//	techspider scan --recursive <url>
//
// See --help for all available options.
package main

// main is the entry point for techspider.
func main() {
	Execute()
}
