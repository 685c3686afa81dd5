// Package moderation masks blacklisted words in outbound messages.
// The portal is a school product: text leaves the composer already
// sanitized, whatever the server does on its side.
package moderation

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator holds the Aho-Corasick automaton built from the embedded
// word lists. Matching runs on a normalized view of the text (lowered,
// leet-speak folded, punctuation and spacing stripped) while masking
// is applied to the original runes, so spacing is preserved.
type Moderator struct {
	matcher *goahocorasick.Machine
	mask    rune
}

type textMapping struct {
	normalized []rune
	origIdx    []int
}

func NewModerator(words []string, mask rune) (*Moderator, error) {
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = normalizeRunes([]rune(word))
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, mask: mask}, nil
}

// Sanitize masks every blacklisted pattern and reports how many spans
// were hit.
func (m *Moderator) Sanitize(original string) (string, int) {
	mapping := normalize(original)
	if len(mapping.normalized) == 0 {
		return original, 0
	}

	spans := m.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original, 0
	}

	origRunes := []rune(original)
	hits := 0
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(mapping.origIdx) {
			continue
		}
		first := mapping.origIdx[start]
		last := mapping.origIdx[end-1]
		for i := first; i <= last; i++ {
			origRunes[i] = m.mask
		}
		hits++
	}
	return string(origRunes), hits
}

// Language reports the ISO 639-1 code of the text's detected language,
// used as a log attribute only.
func Language(text string) string {
	info := whatlanggo.Detect(text)
	return info.Lang.Iso6391()
}

func normalize(input string) textMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))
	for i, r := range origRunes {
		clean := foldRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return textMapping{normalized: norm, origIdx: origIdx}
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := foldRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// foldRune maps common leet-speak characters back to their standard
// alphabet counterparts.
func foldRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
