package model

// PageTexts holds the structured text fields harvested from pages during
// a crawl. Each field is written at most once across the whole crawl:
// the first page that yields a non-empty value wins, later pages cannot
// overwrite it.
type PageTexts struct {
	// Title is the page title (html <title>, twitter:title, JSON-LD
	// headline, og:title, or microdata, in that precedence order).
	// Capped at 250 characters.
	Title string `json:"title,omitempty"`

	// Description is the meta/og/JSON-LD description. Capped at 250
	// characters.
	Description string `json:"description,omitempty"`

	// SiteName is og:site_name or the JSON-LD publisher name. Generic
	// values ("home", "index" and similar) are rejected at extraction.
	SiteName string `json:"site_name,omitempty"`

	// SecondaryTitle is the text of the first non-empty h1 or h2.
	SecondaryTitle string `json:"secondary_title,omitempty"`

	// PageText is the de-tagged visible body text with "- " prefixes on
	// list items, capped at 65534 bytes without splitting a UTF-8 rune.
	PageText string `json:"page_text,omitempty"`

	// JSONLD is the raw content of the first JSON-LD script block.
	// Collected from the seed page only.
	JSONLD string `json:"jsonld,omitempty"`

	// Locale is the detected content language as a BCP-47 tag.
	Locale string `json:"locale,omitempty"`
}

// MergeAbsent copies each non-empty field of other into t only where t's
// field is still empty. This is the crawl-wide first-write-wins rule: a
// deep page can fill a gap the seed page left, but never replaces what
// an earlier page already supplied.
func (t *PageTexts) MergeAbsent(other PageTexts) {
	if t.Title == "" {
		t.Title = other.Title
	}
	if t.Description == "" {
		t.Description = other.Description
	}
	if t.SiteName == "" {
		t.SiteName = other.SiteName
	}
	if t.SecondaryTitle == "" {
		t.SecondaryTitle = other.SecondaryTitle
	}
	if t.PageText == "" {
		t.PageText = other.PageText
	}
	if t.JSONLD == "" {
		t.JSONLD = other.JSONLD
	}
	if t.Locale == "" {
		t.Locale = other.Locale
	}
}

// Complete reports whether every field has been filled. Once complete,
// later pages can skip text extraction entirely.
func (t *PageTexts) Complete() bool {
	return t.Title != "" &&
		t.Description != "" &&
		t.SiteName != "" &&
		t.SecondaryTitle != "" &&
		t.PageText != "" &&
		t.JSONLD != "" &&
		t.Locale != ""
}
