package keyword

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Composes unicode (NFC) and lower-cases the text.
//
// Composition means that a decomposed "e" + combining accent in a message matches a banned word written with the precomposed character (and vice versa). No other folding is done.
func Normalize(text string) string {
	return strings.ToLower(norm.NFC.String(text))
}
