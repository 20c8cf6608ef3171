package crawler

import (
	"regexp"
	"sort"

	"github.com/techspider/techspider/internal/model"
	"github.com/techspider/techspider/internal/urlutil"
)

// crawlableExtensions accepts extensionless paths and the common
// server-rendered page extensions. Assets and downloads never make it
// into the frontier.
var crawlableExtensions = regexp.MustCompile(`(^[^.]+$|\.(asp|aspx|cgi|htm|html|jsp|php)$)`)

// filterLinks reduces a page's raw links to the frontier candidates:
// same-site http(s) pages, no nofollow, crawlable extension, one link
// per base path, each href (fragment stripped) at most once. The result
// is ordered shallow-first by slash count.
func (d *Driver) filterLinks(links []model.Link) []*model.CrawlURL {
	var out []*model.CrawlURL
	seen := make(map[string]bool)

	for _, link := range links {
		if link.Rel == "nofollow" {
			continue
		}

		href := urlutil.StripFragment(link.Href)
		if href == "" || seen[href] {
			continue
		}

		u, err := model.NewCrawlURL(href)
		if err != nil {
			continue
		}
		if !u.SameSite(d.origin) {
			continue
		}
		if !crawlableExtensions.MatchString(u.Path()) {
			continue
		}
		if d.registry.Known(u.String()) {
			continue
		}
		if !d.registry.ClaimBasePath(urlutil.BasePath(u.Path())) {
			continue
		}

		seen[href] = true
		out = append(out, u)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SlashCount() < out[j].SlashCount()
	})
	return out
}
