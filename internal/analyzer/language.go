package analyzer

import (
	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// minDetectionLength is the minimum text length worth running language
// detection on. Trigram detection over shorter text is noise.
const minDetectionLength = 40

// WhatLangDetector is the default LanguageDetector, backed by trigram
// analysis. It requires the detector's own reliability verdict before
// reporting a language.
type WhatLangDetector struct{}

// NewWhatLangDetector returns the default language detector.
func NewWhatLangDetector() *WhatLangDetector {
	return &WhatLangDetector{}
}

// Detect returns the BCP-47 tag of the dominant language in text.
func (d *WhatLangDetector) Detect(text string) (string, bool) {
	if len(text) < minDetectionLength {
		return "", false
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "", false
	}

	iso := info.Lang.Iso6391()
	if iso == "" {
		return "", false
	}

	tag, err := language.Parse(iso)
	if err != nil {
		return "", false
	}
	return tag.String(), true
}
