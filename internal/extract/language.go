package extract

import (
	"sync"

	"github.com/pemistahl/lingua-go"
)

// minDetectLength is the shortest text worth classifying; shorter pages are
// treated as undetected.
const minDetectLength = 40

// LanguageDetector classifies page text.
// Detect returns the language name ("" when undetected) and whether the
// English-only text patterns should run.
type LanguageDetector interface {
	Detect(text string) (language string, english bool)
}

// LinguaDetector is a LanguageDetector backed by lingua-go.
type LinguaDetector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

// detectableLanguages are the languages a company website in the target
// markets is likely to be written in.
var detectableLanguages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Dutch,
	lingua.Portuguese,
	lingua.Polish,
	lingua.Swedish,
	lingua.Danish,
}

// NewLinguaDetector returns a detector. Language models load on first use.
func NewLinguaDetector() *LinguaDetector {
	return &LinguaDetector{}
}

// Detect implements LanguageDetector. Text that cannot be classified counts as English.
func (d *LinguaDetector) Detect(text string) (string, bool) {
	if len(text) < minDetectLength {
		return "", true
	}
	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			WithMinimumRelativeDistance(0.1).
			Build()
	})

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", true
	}
	return lang.String(), lang == lingua.English
}
