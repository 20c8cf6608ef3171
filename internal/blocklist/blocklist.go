// Package blocklist loads and compiles the cookie-banner/ad filter list
// applied during screenshot visits. Only network filter rules are
// supported: domain anchors ("||example.com^") and plain substrings.
// Cosmetic rules, exceptions and comments are ignored.
package blocklist

import (
	"net/url"
	"strings"
)

// List is a compiled filter list. Safe for concurrent use once built.
type List struct {
	// domains are "||" anchored rules matched against the host (and
	// its parent-domain suffixes).
	domains map[string]bool

	// substrings are plain rules matched anywhere in the URL.
	substrings []string
}

// Compile parses filter-list text into a matcher. Unsupported lines are
// skipped rather than rejected: the upstream list mixes cosmetic and
// scriptlet rules that request interception cannot express.
func Compile(raw string) *List {
	list := &List{domains: make(map[string]bool)}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "[") {
			continue
		}
		// exception and cosmetic rules
		if strings.HasPrefix(line, "@@") || strings.Contains(line, "##") || strings.Contains(line, "#@#") {
			continue
		}
		// strip filter options ("$third-party" etc.)
		if idx := strings.LastIndex(line, "$"); idx >= 0 {
			line = line[:idx]
		}
		if line == "" {
			continue
		}

		if domain, ok := strings.CutPrefix(line, "||"); ok {
			domain = strings.TrimSuffix(domain, "^")
			domain = strings.TrimSuffix(domain, "/")
			if domain != "" && !strings.Contains(domain, "/") && !strings.Contains(domain, "*") {
				list.domains[strings.ToLower(domain)] = true
				continue
			}
			// anchored rules with paths or wildcards degrade to substrings
			line = domain
		}

		line = strings.Trim(line, "|^")
		if line != "" && !strings.Contains(line, "*") {
			list.substrings = append(list.substrings, strings.ToLower(line))
		}
	}

	return list
}

// Blocked reports whether a request URL matches the list.
func (l *List) Blocked(rawURL string) bool {
	lower := strings.ToLower(rawURL)

	u, err := url.Parse(lower)
	if err == nil && u.Hostname() != "" {
		host := u.Hostname()
		for host != "" {
			if l.domains[host] {
				return true
			}
			idx := strings.Index(host, ".")
			if idx < 0 {
				break
			}
			host = host[idx+1:]
		}
	}

	for _, sub := range l.substrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled rules.
func (l *List) Len() int {
	return len(l.domains) + len(l.substrings)
}
