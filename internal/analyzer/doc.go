// Package analyzer defines the collaborator interfaces between the
// crawl orchestrator and the technology-fingerprinting engine, plus the
// helpers that prepare page signals for matching.
//
// The orchestrator does not embed a fingerprint database. It hands each
// page's signals to a Matcher and receives detections back through the
// Reporter it implements. This keeps the crawler reusable against any
// fingerprint engine and keeps the engine ignorant of browsers and
// processes.
package analyzer
