// Package htmlproc processes raw page HTML into the forms the matcher
// and text collectors consume: a bounded window of the markup, a
// de-tagged text rendition, and the structured page-text fields.
package htmlproc

import "strings"

// Window bounds HTML before pattern matching. The markup is cut into
// rows of maxCols characters; only the first and last maxRows/2 rows are
// kept, joined by newlines. Huge generated pages (calendars, data
// tables) get their middle discarded while head and tail, where
// fingerprintable markup lives, survive intact. Non-positive limits
// return the input unchanged.
func Window(html string, maxCols, maxRows int) string {
	if maxCols <= 0 || maxRows <= 0 {
		return html
	}

	runes := []rune(html)
	rows := float64(len(runes)) / float64(maxCols)
	half := float64(maxRows) / 2

	var chunks []string
	for i := 0; float64(i) < rows; i++ {
		if float64(i) < half || float64(i) > rows-half {
			end := (i + 1) * maxCols
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, string(runes[i*maxCols:end]))
		}
	}

	return strings.Join(chunks, "\n")
}
