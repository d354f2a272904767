package host

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/codeshell/internal/lang"
)

// Validator produces the diagnostics snapshot of a text.
type Validator interface {
	Validate(text string) lang.ValidationResult
}

// BasicValidator checks bracket balance, flags trailing whitespace and
// collects func declarations. Strings and '#' comments are skipped.
type BasicValidator struct{}

var funcDecl = regexp.MustCompile(`^\s*(?:static\s+)?func\s+([A-Za-z_][A-Za-z0-9_]*)`)

var closers = map[rune]rune{')': '(', ']': '[', '}': '{'}

type opener struct {
	r    rune
	line int
	col  int
}

// Validate implements Validator.
func (BasicValidator) Validate(text string) lang.ValidationResult {
	var res lang.ValidationResult
	var stack []opener

	for lineNo, line := range strings.Split(text, "\n") {
		if m := funcDecl.FindStringSubmatch(line); m != nil {
			res.Functions = append(res.Functions, lang.Symbol{Name: m[1], Line: lineNo})
		}
		if trimmed := strings.TrimRight(line, " \t"); len(trimmed) != len(line) && trimmed != "" {
			res.Warnings = append(res.Warnings, lang.Diagnostic{
				Severity: lang.SeverityWarning,
				Line:     lineNo,
				Column:   len([]rune(trimmed)),
				Message:  "trailing whitespace",
			})
		}

		var quote rune
		col := 0
		escaped := false
	scan:
		for _, r := range line {
			switch {
			case quote != 0:
				switch {
				case escaped:
					escaped = false
				case r == '\\':
					escaped = true
				case r == quote:
					quote = 0
				}
			case r == '"' || r == '\'':
				quote = r
			case r == '#':
				break scan
			case r == '(' || r == '[' || r == '{':
				stack = append(stack, opener{r: r, line: lineNo, col: col})
			case closers[r] != 0:
				if n := len(stack); n > 0 && stack[n-1].r == closers[r] {
					stack = stack[:n-1]
				} else {
					res.Errors = append(res.Errors, lang.Diagnostic{
						Severity: lang.SeverityError,
						Line:     lineNo,
						Column:   col,
						Message:  fmt.Sprintf("unexpected %q", r),
					})
				}
			}
			col++
		}
	}

	for _, o := range stack {
		res.Errors = append(res.Errors, lang.Diagnostic{
			Severity: lang.SeverityError,
			Line:     o.line,
			Column:   o.col,
			Message:  fmt.Sprintf("unclosed %q", o.r),
		})
	}
	return res
}
