// Package tokens approximates token counts for usage metering. It is a cheap
// heuristic over words and symbols, not a model tokenizer; billing built on it
// is an estimate.
package tokens

import (
	"strings"
	"unicode"
)

const longWordLen = 7

// Count estimates the number of model tokens in text.
//
// Each word (a run of letters or digits) counts as one token. Words longer
// than 7 characters add floor(len/8) extra, since tokenizers split long words.
// Every symbol character (not alphanumeric, not whitespace) adds one. The
// result is at least 1 for non-empty text and 0 for empty text.
func Count(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	count := len(words)
	for _, w := range words {
		if n := len([]rune(w)); n > longWordLen {
			count += n / 8
		}
	}

	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsSpace(r) {
			count++
		}
	}

	if count < 1 {
		count = 1
	}
	return count
}
