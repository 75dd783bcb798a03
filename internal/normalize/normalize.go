// Package normalize provides the pluggable key-normalization hook applied
// to a token before stem lookup, generalizing a fixed Latin-specific
// diacritic-folding pipeline (vowel-quantity and spelling normalization)
// into a single swappable function. The default mirrors the original
// analyzer's own wf.lower() call at the top of Parser.parse: a plain case
// fold, since Udmurt orthography carries no comparable quantity/spelling
// diacritics to normalize away.
package normalize

import "strings"

// KeyNormalizer maps a raw token to the canonical form used for stem
// lookup.
type KeyNormalizer func(string) string

// Default lowercases s, the original's parse-time normalization.
func Default(s string) string {
	return strings.ToLower(s)
}
