// Package crawler implements the crawl orchestrator: a depth- and
// budget-bounded frontier over one site, fanned out in fixed-size
// chunks of isolated browser processes.
//
// The Driver owns the lifecycle of one crawl. It claims URLs through a
// shared Registry so no page is visited twice and the URL budget is
// never overrun, dispatches each visit to a Visitor (in production the
// worker Dispatcher, which forks a child process per page), classifies
// failures into a small error taxonomy recorded per URL, and folds
// page signals into a single CrawlResult. The BatchProcessor layers
// multi-target concurrency on top, one Driver per target.
package crawler
