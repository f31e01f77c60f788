package splitter

import (
	"unicode"

	uax29words "github.com/clipperhouse/uax29/v2/words"
)

// Tokens breaks a capture's text into raw whitespace/punctuation-delimited
// tokens using Unicode word-boundary segmentation (UAX #29), mirroring the
// original implementation's use of split_word_bounds() ahead of per-token
// camelCase/snake_case splitting. Only tokens containing at least one letter
// or digit are kept; pure punctuation/whitespace segments are dropped.
func Tokens(text string) []Word {
	var out []Word
	seg := uax29words.FromBytes([]byte(text))
	for seg.Next() {
		tok := seg.Value()
		if !hasLetterOrDigit(tok) {
			continue
		}
		start := seg.Start()
		for _, w := range Split(string(tok)) {
			out = append(out, Word{
				Text:      w.Text,
				Lower:     w.Lower,
				StartByte: start + w.StartByte,
				EndByte:   start + w.EndByte,
			})
		}
	}
	return out
}

func hasLetterOrDigit(b []byte) bool {
	for _, r := range string(b) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
