package urlutil

import (
	"net/url"
	"testing"
)

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		want string
	}{
		{
			name: "simple com domain",
			host: "example.com",
			want: "example.com",
		},
		{
			name: "subdomain is stripped",
			host: "blog.example.com",
			want: "example.com",
		},
		{
			name: "multi-label public suffix",
			host: "shop.example.co.uk",
			want: "example.co.uk",
		},
		{
			name: "github.io subdomains are separate sites",
			host: "project.user.github.io",
			want: "user.github.io",
		},
		{
			name: "uppercase host is lowered",
			host: "Blog.Example.COM",
			want: "example.com",
		},
		{
			name: "trailing dot is removed",
			host: "example.com.",
			want: "example.com",
		},
		{
			name: "localhost falls back to host",
			host: "localhost",
			want: "localhost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := RegistrableDomain(tt.host); got != tt.want {
				t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

func TestSameSite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{
			name: "same host",
			a:    "https://example.com/",
			b:    "https://example.com/about",
			want: true,
		},
		{
			name: "different subdomains of same domain",
			a:    "https://www.example.com/",
			b:    "https://blog.example.com/",
			want: true,
		},
		{
			name: "different registrable domains",
			a:    "https://example.com/",
			b:    "https://example.org/",
			want: false,
		},
		{
			name: "different github.io users",
			a:    "https://alice.github.io/",
			b:    "https://bob.github.io/",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := url.Parse(tt.a)
			if err != nil {
				t.Fatal(err)
			}
			b, err := url.Parse(tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if got := SameSite(a, b); got != tt.want {
				t.Errorf("SameSite(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "query is removed",
			raw:  "https://example.com/page?a=1&b=2",
			want: "https://example.com/page",
		},
		{
			name: "fragment is removed",
			raw:  "https://example.com/page#section",
			want: "https://example.com/page",
		},
		{
			name: "port is kept",
			raw:  "http://example.com:8080/page",
			want: "http://example.com:8080/page",
		},
		{
			name: "root path",
			raw:  "https://example.com/",
			want: "https://example.com/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, err := url.Parse(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			if got := Canonical(u); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/docs/intro.html", "/docs"},
		{"/docs/", "/docs"},
		{"/docs", "/docs"},
		{"/", "/"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := BasePath(tt.path); got != tt.want {
				t.Errorf("BasePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestSlashCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want int
	}{
		{"/", 1},
		{"/a/b/c", 3},
		{"", 0},
	}

	for _, tt := range tests {
		if got := SlashCount(tt.path); got != tt.want {
			t.Errorf("SlashCount(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestStripFragment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		href string
		want string
	}{
		{"https://example.com/page#top", "https://example.com/page"},
		{"https://example.com/page", "https://example.com/page"},
		{"#only-fragment", ""},
	}

	for _, tt := range tests {
		if got := StripFragment(tt.href); got != tt.want {
			t.Errorf("StripFragment(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
