// Package model defines the core data structures used throughout techspider.
//
// This package contains the following main types:
//   - CrawlURL: A parsed, canonicalized frontier entry
//   - SignalBundle: Everything one page visit extracted for fingerprinting
//   - PageTexts: Structured text fields collected across the crawl
//   - CrawlResult: The final outcome of an Analyze run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, worker, analyzer, report) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for the worker protocol,
// report output, and database storage.
package model
