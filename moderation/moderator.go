// Package moderation censors blacklisted words in message text before it
// is persisted or fanned out.
package moderation

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator masks forbidden patterns with a replacement rune. Matching is
// case-insensitive and ignores separator characters, so "b a d" still
// matches "bad"; the mask is applied to the original runes, spacing kept.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the Aho-Corasick automaton from the word list.
func NewModerator(words []string, replacement rune) (*Moderator, error) {
	patterns := make([][]rune, len(words))
	for i, w := range words {
		patterns[i] = normalize([]rune(w), nil)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor returns text with every blacklisted span masked, plus the list of
// matched words so callers can log what was caught.
func (m *Moderator) Censor(text string) (string, []string) {
	original := []rune(text)
	var origIdx []int
	normalized := normalize(original, &origIdx)
	if len(normalized) == 0 {
		return text, nil
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return text, nil
	}

	found := make([]string, 0, len(spans))
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		found = append(found, string(span.Word))
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			original[i] = m.replacement
		}
	}
	return string(original), found
}

// DetectLanguage reports the ISO 639-1 code of the text's most likely
// language, for tagging moderation logs per audience language.
func DetectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	return info.Lang.Iso6391()
}

// normalize lowercases and strips separators. When idx is non-nil it
// records, per kept rune, its position in the input.
func normalize(in []rune, idx *[]int) []rune {
	out := make([]rune, 0, len(in))
	for i, r := range in {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
		if idx != nil {
			*idx = append(*idx, i)
		}
	}
	return out
}
