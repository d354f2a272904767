package host

import (
	"strings"

	"github.com/dshills/codeshell/internal/lang"
)

// CompletionSource produces candidates for the identifier prefix at the
// caret.
type CompletionSource interface {
	Complete(prefix, text string) []lang.Completion
}

// WordSource offers keywords and the identifiers already in the buffer.
type WordSource struct {
	Keywords []string
	MaxItems int
}

// Complete returns keywords then buffer words starting with prefix, each
// once, excluding prefix itself.
func (s WordSource) Complete(prefix, text string) []lang.Completion {
	seen := map[string]bool{prefix: true}
	var out []lang.Completion
	add := func(c lang.Completion) bool {
		if seen[c.Label] || !strings.HasPrefix(c.Label, prefix) {
			return true
		}
		seen[c.Label] = true
		out = append(out, c)
		return s.MaxItems <= 0 || len(out) < s.MaxItems
	}

	for _, kw := range s.Keywords {
		if !add(lang.Completion{Kind: lang.KindKeyword, Label: kw}) {
			return out
		}
	}
	for _, w := range bufferWords(text) {
		if !add(w) {
			return out
		}
	}
	return out
}

// bufferWords returns identifiers of two or more runes in order of first
// appearance. A word directly followed by '(' is reported as a function.
func bufferWords(text string) []lang.Completion {
	var out []lang.Completion
	index := map[string]int{}
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if !isIdentRune(runes[i]) || (i > 0 && isIdentRune(runes[i-1])) {
			i++
			continue
		}
		j := i
		for j < len(runes) && isIdentRune(runes[j]) {
			j++
		}
		word := string(runes[i:j])
		kind := lang.KindVariable
		if j < len(runes) && runes[j] == '(' {
			kind = lang.KindFunction
		}
		if j-i >= 2 && !isDigitStart(word) {
			if at, ok := index[word]; ok {
				if kind == lang.KindFunction {
					out[at].Kind = kind
				}
			} else {
				index[word] = len(out)
				out = append(out, lang.Completion{Kind: kind, Label: word})
			}
		}
		i = j
	}
	return out
}

func isDigitStart(word string) bool {
	return word != "" && word[0] >= '0' && word[0] <= '9'
}
