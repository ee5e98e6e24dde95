// Package linkcheck crawls one or more seed URLs, following links that
// match a set of host-glob patterns, and reports broken links and
// missing anchor fragments.
//
// The crawl is driven by a single coordinator goroutine dispatching
// work to a fixed pool of fetch workers over channels; the
// coordinator is the sole owner of the destination store, so no
// locking is needed across the worker boundary.
package linkcheck
