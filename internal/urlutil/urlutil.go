// Package urlutil provides URL helpers used by the crawl frontier.
//
// All functions are pure and operate on *url.URL or plain strings.
// Registrable-domain decisions are backed by the public suffix list so
// that "blog.example.co.uk" and "shop.example.co.uk" are treated as the
// same site while "example.github.io" and "other.github.io" are not.
package urlutil

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// RegistrableDomain returns the eTLD+1 for the given host, e.g.
// "blog.example.co.uk" yields "example.co.uk". When the host is itself
// a public suffix or cannot be derived (IP addresses, localhost), the
// host is returned unchanged so that exact-host comparison still works.
func RegistrableDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// SameSite reports whether two URLs share a registrable domain.
func SameSite(a, b *url.URL) bool {
	return RegistrableDomain(a.Hostname()) == RegistrableDomain(b.Hostname())
}

// Canonical returns the scheme, host and path of a URL with query and
// fragment removed. This is the identity under which a page is
// registered in the visit registry.
func Canonical(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.EscapedPath()
}

// BasePath returns the first path segment: "/docs/intro.html" yields
// "/docs", "/docs" stays "/docs". Link batches are deduplicated by base
// path so a crawl samples one page per site section instead of ten
// pages from the same section.
func BasePath(path string) string {
	if len(path) <= 1 {
		return path
	}
	if idx := strings.Index(path[1:], "/"); idx >= 0 {
		return path[:idx+1]
	}
	return path
}

// SlashCount returns the number of "/" characters in the path. Links
// are visited in ascending slash-count order so that shallow pages are
// crawled before deep ones.
func SlashCount(path string) int {
	return strings.Count(path, "/")
}

// StripFragment returns the href with everything from "#" onward
// removed. Used for deduplication: two links differing only in
// fragment point at the same document.
func StripFragment(href string) string {
	if idx := strings.Index(href, "#"); idx >= 0 {
		return href[:idx]
	}
	return href
}
