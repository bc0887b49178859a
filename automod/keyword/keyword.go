package keyword

import (
	"slices"
	"strings"
)

// Immutable set of lower-case banned words, matched as substrings of normalized message text.
//
// Matching is plain substring containment, not whole-word: a banned word embedded in a longer word still matches.
type BannedWords struct {
	words []string
}

// Parses a comma-separated list of banned words (eg, the BANNED_WORDS config value).
//
// Entries are trimmed and lower-cased; empty entries are dropped, as are duplicates.
func ParseBannedWords(csv string) *BannedWords {
	return NewBannedWords(strings.Split(csv, ","))
}

func NewBannedWords(words []string) *BannedWords {
	out := []string{}
	for _, w := range words {
		w = Normalize(strings.TrimSpace(w))
		if w == "" || slices.Contains(out, w) {
			continue
		}
		out = append(out, w)
	}
	// deterministic match order
	slices.Sort(out)
	return &BannedWords{words: out}
}

// Returns the first banned word contained in the text, or empty string if there is no match. Safe to call on a nil set.
func (bw *BannedWords) Match(text string) string {
	if bw == nil || len(bw.words) == 0 || text == "" {
		return ""
	}
	norm := Normalize(text)
	for _, w := range bw.words {
		if strings.Contains(norm, w) {
			return w
		}
	}
	return ""
}

func (bw *BannedWords) Contains(text string) bool {
	return bw.Match(text) != ""
}

func (bw *BannedWords) Len() int {
	if bw == nil {
		return 0
	}
	return len(bw.words)
}

// Returns a copy of the word list, sorted.
func (bw *BannedWords) Words() []string {
	if bw == nil {
		return nil
	}
	return slices.Clone(bw.words)
}
