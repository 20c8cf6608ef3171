package htmlproc

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/techspider/techspider/internal/model"
)

// MaxFieldLen caps the title, description and site-name fields.
const MaxFieldLen = 250

// MaxPageTextBytes caps the page_text field. The cap is applied on
// UTF-8 byte length without splitting a rune.
const MaxPageTextBytes = 65534

// genericSiteNames are site-name values that carry no identity: CMS
// defaults, placeholder templates and hosting-platform names. A site
// name matching one of these (case-insensitive) is discarded.
var genericSiteNames = map[string]bool{
	"mysite": true, "website": true, "home": true, "classy": true,
	"blog": true, "default store view": true, "default": true,
	"website-1": true, "my site": true, "welcome": true, "english": true,
	"my blog": true, "mysite-1": true, "blank title": true,
	"online store": true, "my website": true, "your site title": true,
	"my cms": true, "gitlab": true, "jalbum": true, "yelp": true,
	"newsite": true, "tumblr": true, "main": true,
	"custom logo cases": true, "getty images": true, "mysite 1": true,
	"news": true, "airbnb": true, "en": true, "startseite": true,
	".": true, "{$plugin.tx_news.opengraph.site_name}": true,
	"monsite": true, "medium": true, "land rover configurator": true,
	"your site name goes here": true, "perfect test site": true,
	"help center": true, "homepage": true, "mynewsdesk": true,
	"mysite-2": true, "nextcloud": true, "site name": true, "site": true,
	"portal": true, "salon": true, "test": true, "shopify": true,
	"support": true, "vimeo": true, "google docs": true,
	"printing & more": true, "pinterest": true, "classic-layout": true,
	"a wordpress site": true, "meinewebsite": true,
	"-customer value-": true, "youtube": true, "website-2": true,
	"construction-company": true, "home page": true, "default site": true,
	"main website": true, "my wordpress": true, "/": true, "start": true,
	"facebook": true,
}

// ExtractTexts derives the structured text fields from a page's HTML.
// Metadata fields follow a fixed precedence: html tags first, then
// twitter cards, JSON-LD, OpenGraph, and microdata. The raw JSON-LD
// block is collected only when structured is true (the crawl's first
// page). Fields that yield nothing stay empty; the caller merges the
// result into the crawl-wide texts with first-write-wins semantics.
func ExtractTexts(src string, structured bool) model.PageTexts {
	var texts model.PageTexts

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return texts
	}

	jsonld := parseJSONLD(doc)

	texts.Title = capField(firstOf(
		func() string { return doc.Find("title").First().Text() },
		func() string { return metaContent(doc, "name", "twitter:title") },
		func() string { return jsonldValue(jsonld, "title") },
		func() string { return metaContent(doc, "property", "og:title") },
		func() string { return metaContent(doc, "itemprop", "title") },
	))

	texts.Description = capField(firstOf(
		func() string { return metaContent(doc, "name", "description") },
		func() string { return metaContent(doc, "name", "twitter:description") },
		func() string { return jsonldValue(jsonld, "description") },
		func() string { return metaContent(doc, "property", "og:description") },
		func() string { return metaContent(doc, "itemprop", "description") },
	))

	siteName := firstOf(
		func() string { return metaContent(doc, "property", "og:site_name") },
		func() string { return jsonldValue(jsonld, "name") },
		func() string { return metaContent(doc, "itemprop", "name") },
	)
	if !genericSiteNames[strings.ToLower(siteName)] {
		texts.SiteName = capField(siteName)
	}

	texts.SecondaryTitle = capField(secondaryTitle(doc))

	if structured {
		if raw := doc.Find(`script[type="application/ld+json"]`).First().Text(); raw != "" {
			texts.JSONLD = strings.TrimSpace(raw)
		}
	}

	// page_text leads with title and description so downstream search
	// over it matches them even when the body text gets truncated.
	body := pageBodyText(doc)
	if body != "" || texts.Title != "" || texts.Description != "" {
		texts.PageText = CapBytes(
			strings.TrimSpace(texts.Title+" "+texts.Description+" "+body),
			MaxPageTextBytes,
		)
	}

	return texts
}

// firstOf returns the first non-empty trimmed value.
func firstOf(sources ...func() string) string {
	for _, source := range sources {
		if v := strings.TrimSpace(source()); v != "" {
			return v
		}
	}
	return ""
}

func metaContent(doc *goquery.Document, attr, value string) string {
	sel := "meta[" + attr + `="` + value + `"]`
	content, _ := doc.Find(sel).First().Attr("content")
	return content
}

// parseJSONLD decodes every ld+json script block into generic maps.
// A block holding a top-level array contributes each element.
func parseJSONLD(doc *goquery.Document) []map[string]any {
	var out []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err == nil {
			out = append(out, obj)
			return
		}
		var arr []map[string]any
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			out = append(out, arr...)
		}
	})
	return out
}

// jsonldValue finds the first string value for key across the decoded
// JSON-LD objects.
func jsonldValue(objs []map[string]any, key string) string {
	for _, obj := range objs {
		if v, ok := obj[key].(string); ok {
			return v
		}
	}
	return ""
}

// secondaryTitle returns the text of the first non-empty h1, falling
// back to the first non-empty h2.
func secondaryTitle(doc *goquery.Document) string {
	for _, tag := range []string{"h1", "h2"} {
		found := ""
		doc.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := strings.TrimSpace(s.Text()); text != "" {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// pageBodyText renders the body as plain text: scripts and styles
// dropped, list items prefixed with "- ", whitespace collapsed.
func pageBodyText(doc *goquery.Document) string {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}
	clone := body.Clone()
	clone.Find("script, style, noscript, template").Remove()
	clone.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})
	return strings.Join(strings.Fields(clone.Text()), " ")
}

// CapBytes truncates s to at most max bytes without splitting a UTF-8
// rune.
func CapBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[:len(s)-1]
			continue
		}
		break
	}
	return s
}

func capField(s string) string {
	runes := []rune(s)
	if len(runes) > MaxFieldLen {
		return string(runes[:MaxFieldLen])
	}
	return s
}
