package menu

import (
	"strings"
	"unicode"
)

// FallbackLabel derives a display label from an action id. The last
// dot-separated segment is split on camel case, underscores and dashes and
// title-cased: "editor.action.formatDocument" becomes "Format Document".
func FallbackLabel(id string) string {
	seg := id
	if i := strings.LastIndexByte(id, '.'); i >= 0 && i < len(id)-1 {
		seg = id[i+1:]
	}

	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(seg)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()

	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
