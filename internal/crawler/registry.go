package crawler

import (
	"sync"

	"github.com/techspider/techspider/internal/model"
)

// Registry tracks every URL the crawl has claimed, its outcome, and the
// base paths already sampled. It is the single gate deciding whether a
// URL gets visited: registration is atomic, so two chunk workers can
// never claim the same page or overrun the URL budget.
type Registry struct {
	mu        sync.Mutex
	max       int
	statuses  map[string]*model.URLStatus
	basePaths map[string]bool
}

// NewRegistry creates a Registry bounded to max URLs.
func NewRegistry(max int) *Registry {
	return &Registry{
		max:       max,
		statuses:  make(map[string]*model.URLStatus),
		basePaths: make(map[string]bool),
	}
}

// Register claims a URL for visiting. It returns false when the URL was
// already claimed or the budget is exhausted; the caller then skips the
// visit entirely.
func (r *Registry) Register(href string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.statuses[href]; ok {
		return false
	}
	if len(r.statuses) >= r.max {
		return false
	}
	r.statuses[href] = &model.URLStatus{}
	return true
}

// Known reports whether a URL has been claimed.
func (r *Registry) Known(href string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.statuses[href]
	return ok
}

// SetStatus records the HTTP status for a claimed URL.
func (r *Registry) SetStatus(href string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.statuses[href]; ok {
		st.Status = status
	}
}

// SetError records the failure kind for a claimed URL.
func (r *Registry) SetError(href, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.statuses[href]; ok {
		st.Error = kind
	}
}

// ClaimBasePath marks a base path as sampled. It returns false when the
// path section was already claimed by an earlier link.
func (r *Registry) ClaimBasePath(basePath string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.basePaths[basePath] {
		return false
	}
	r.basePaths[basePath] = true
	return true
}

// Count returns the number of claimed URLs.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.statuses)
}

// Snapshot copies the per-URL outcomes for the crawl result.
func (r *Registry) Snapshot() map[string]model.URLStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]model.URLStatus, len(r.statuses))
	for href, st := range r.statuses {
		out[href] = *st
	}
	return out
}
