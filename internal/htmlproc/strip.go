package htmlproc

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags returns the visible text of an HTML document with script,
// style and head content removed and runs of whitespace collapsed to a
// single space. Used as the input to language detection.
func StripTags(src string) string {
	node, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	collectText(node, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
	"template": true,
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && skippedElements[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
