package crawler

import (
	"testing"

	"github.com/techspider/techspider/internal/model"
)

func hrefs(links []*model.CrawlURL) []string {
	out := make([]string, 0, len(links))
	for _, link := range links {
		out = append(out, link.String())
	}
	return out
}

func TestFilterLinks(t *testing.T) {
	t.Parallel()

	t.Run("FiltersFrontierCandidates", func(t *testing.T) {
		t.Parallel()

		d := newTestDriver(t, "https://example.com", newTestOptions(), &fakeVisitor{})

		got := d.filterLinks([]model.Link{
			{Href: "https://example.com/about.html"},
			{Href: "https://example.com/sponsored.html", Rel: "nofollow"},
			{Href: "https://other.org/about.html"},
			{Href: "mailto:info@example.com"},
			{Href: "https://example.com/brochure.pdf"},
			{Href: "https://example.com/app.js"},
			{Href: "https://example.com/contact"},
		})

		want := []string{
			"https://example.com/about.html",
			"https://example.com/contact",
		}
		if gotHrefs := hrefs(got); len(gotHrefs) != len(want) {
			t.Fatalf("filterLinks() = %v, want %v", gotHrefs, want)
		}
		for i, href := range hrefs(got) {
			if href != want[i] {
				t.Errorf("filterLinks()[%d] = %s, want %s", i, href, want[i])
			}
		}
	})

	t.Run("SubdomainsOfSameSiteAllowed", func(t *testing.T) {
		t.Parallel()

		d := newTestDriver(t, "https://example.com", newTestOptions(), &fakeVisitor{})

		got := d.filterLinks([]model.Link{
			{Href: "https://blog.example.com/post.html"},
		})
		if len(got) != 1 {
			t.Errorf("subdomain link filtered out, want kept")
		}
	})

	t.Run("OneLinkPerBasePath", func(t *testing.T) {
		t.Parallel()

		d := newTestDriver(t, "https://example.com", newTestOptions(), &fakeVisitor{})

		got := d.filterLinks([]model.Link{
			{Href: "https://example.com/blog/first.html"},
			{Href: "https://example.com/blog/second.html"},
			{Href: "https://example.com/docs/intro.html"},
		})

		want := []string{
			"https://example.com/blog/first.html",
			"https://example.com/docs/intro.html",
		}
		if gotHrefs := hrefs(got); len(gotHrefs) != len(want) {
			t.Fatalf("filterLinks() = %v, want %v", gotHrefs, want)
		}
	})

	t.Run("FragmentsStrippedAndDeduped", func(t *testing.T) {
		t.Parallel()

		d := newTestDriver(t, "https://example.com", newTestOptions(), &fakeVisitor{})

		got := d.filterLinks([]model.Link{
			{Href: "https://example.com/page.html#intro"},
			{Href: "https://example.com/page.html#details"},
		})

		if len(got) != 1 {
			t.Fatalf("filterLinks() = %v, want one deduped link", hrefs(got))
		}
		if got[0].String() != "https://example.com/page.html" {
			t.Errorf("filterLinks()[0] = %s, want fragment stripped", got[0].String())
		}
	})

	t.Run("AlreadyVisitedLinksSkipped", func(t *testing.T) {
		t.Parallel()

		d := newTestDriver(t, "https://example.com", newTestOptions(), &fakeVisitor{})
		d.registry.Register("https://example.com/seen.html")

		got := d.filterLinks([]model.Link{
			{Href: "https://example.com/seen.html"},
			{Href: "https://example.com/new.html"},
		})

		if len(got) != 1 || got[0].String() != "https://example.com/new.html" {
			t.Errorf("filterLinks() = %v, want only the unseen link", hrefs(got))
		}
	})

	t.Run("ShallowPathsFirst", func(t *testing.T) {
		t.Parallel()

		d := newTestDriver(t, "https://example.com", newTestOptions(), &fakeVisitor{})

		got := d.filterLinks([]model.Link{
			{Href: "https://example.com/a/b/c/deep.html"},
			{Href: "https://example.com/shallow.html"},
			{Href: "https://example.com/mid/page.html"},
		})

		want := []string{
			"https://example.com/shallow.html",
			"https://example.com/mid/page.html",
			"https://example.com/a/b/c/deep.html",
		}
		for i, href := range hrefs(got) {
			if href != want[i] {
				t.Errorf("filterLinks()[%d] = %s, want %s", i, href, want[i])
			}
		}
	})
}
