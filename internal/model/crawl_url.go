package model

import (
	"errors"
	"net/url"

	"github.com/techspider/techspider/internal/urlutil"
)

// CrawlURL errors.
var (
	// ErrUnsupportedScheme is returned when the URL scheme is not http or https.
	ErrUnsupportedScheme = errors.New("url scheme must be http or https")
	// ErrEmptyHost is returned when the URL has no host component.
	ErrEmptyHost = errors.New("url host cannot be empty")
)

// CrawlURL is a parsed, validated frontier entry. It is created once by
// NewCrawlURL and never mutated afterwards; callers that need a variant
// (different path, stripped query) parse a new one.
type CrawlURL struct {
	// url is the parsed URL. Never nil.
	url *url.URL

	// canonical is scheme://host/path with query and fragment removed.
	// This is the identity used by the visit registry.
	canonical string

	// slashCount orders links shallow-first within a link batch.
	slashCount int
}

// NewCrawlURL parses and validates a raw URL string. Only absolute
// http(s) URLs with a host are accepted.
func NewCrawlURL(raw string) (*CrawlURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrUnsupportedScheme
	}
	if u.Host == "" {
		return nil, ErrEmptyHost
	}
	if u.Path == "" {
		// browsers report "/" for a bare origin
		u.Path = "/"
	}
	return &CrawlURL{
		url:        u,
		canonical:  urlutil.Canonical(u),
		slashCount: urlutil.SlashCount(u.EscapedPath()),
	}, nil
}

// URL returns a copy of the underlying parsed URL.
func (c *CrawlURL) URL() *url.URL {
	cp := *c.url
	return &cp
}

// String returns the full URL including query and fragment.
func (c *CrawlURL) String() string { return c.url.String() }

// Canonical returns the registry identity (scheme://host/path).
func (c *CrawlURL) Canonical() string { return c.canonical }

// Hostname returns the host without port.
func (c *CrawlURL) Hostname() string { return c.url.Hostname() }

// Path returns the escaped path component.
func (c *CrawlURL) Path() string { return c.url.EscapedPath() }

// SlashCount returns the number of slashes in the path.
func (c *CrawlURL) SlashCount() int { return c.slashCount }

// RegistrableDomain returns the eTLD+1 of the host.
func (c *CrawlURL) RegistrableDomain() string {
	return urlutil.RegistrableDomain(c.url.Hostname())
}

// SameSite reports whether other shares this URL's registrable domain.
func (c *CrawlURL) SameSite(other *CrawlURL) bool {
	return c.RegistrableDomain() == other.RegistrableDomain()
}
