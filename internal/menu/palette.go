package menu

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultPaletteLimit bounds the entries a host presents when it does not
// choose a limit of its own.
const DefaultPaletteLimit = 50

// PaletteAction is one entry of a command palette.
type PaletteAction struct {
	ID      string
	Label   string
	Enabled bool
}

// DisplayLabel returns the action label or the one derived from its id.
func (a PaletteAction) DisplayLabel() string {
	if a.Label != "" {
		return a.Label
	}
	return FallbackLabel(a.ID)
}

// PaletteRequest is a command-palette request raised by a backend.
type PaletteRequest struct {
	// Actions is the canonical, backend-ordered action list.
	Actions []PaletteAction

	// Total is the number of actions the backend has available, which may
	// exceed len(Actions) when the backend truncated its list.
	Total int
}

// Lookup returns the action with the given id.
func (r PaletteRequest) Lookup(id string) (PaletteAction, bool) {
	for _, a := range r.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return PaletteAction{}, false
}

// Visible returns the enabled actions to present for query, at most limit of
// them (limit <= 0 means DefaultPaletteLimit). With an empty query the
// backend order is kept; otherwise actions are ranked by fuzzy score with
// ties kept in backend order. Actions is never modified.
func (r PaletteRequest) Visible(query string, limit int) []PaletteAction {
	if limit <= 0 {
		limit = DefaultPaletteLimit
	}

	query = strings.ToLower(strings.TrimSpace(query))
	type scored struct {
		action PaletteAction
		score  int
	}
	candidates := make([]scored, 0, len(r.Actions))
	for _, a := range r.Actions {
		if !a.Enabled {
			continue
		}
		if query == "" {
			candidates = append(candidates, scored{action: a})
			continue
		}
		score := fuzzyScore(query, a.DisplayLabel())
		if idScore := fuzzyScore(query, a.ID) / 2; idScore > score {
			score = idScore
		}
		if score > 0 {
			candidates = append(candidates, scored{action: a, score: score})
		}
	}

	if query != "" {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]PaletteAction, len(candidates))
	for i, c := range candidates {
		out[i] = c.action
	}
	return out
}

// fuzzyScore returns a positive score when every rune of query appears in
// text in order, favouring consecutive runs, word starts and prefixes.
// query must already be lower case.
func fuzzyScore(query, text string) int {
	if text == "" || query == "" {
		return 0
	}
	q := []rune(query)
	orig := []rune(text)
	lower := make([]rune, len(orig))
	for i, r := range orig {
		lower[i] = unicode.ToLower(r)
	}

	matches := make([]int, 0, len(q))
	qi := 0
	for i := 0; i < len(lower) && qi < len(q); i++ {
		if lower[i] == q[qi] {
			matches = append(matches, i)
			qi++
		}
	}
	if qi != len(q) {
		return 0
	}

	score := 100
	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			score += 20
		}
	}
	for _, idx := range matches {
		if wordStart(orig, idx) {
			score += 15
		}
	}
	if len(lower) >= len(q) && string(lower[:len(q)]) == query {
		score += 75
	}
	if gap := matches[len(matches)-1] - matches[0] - len(matches) + 1; gap > 0 {
		score -= gap * 2
	}
	score -= matches[0]
	if score < 1 {
		score = 1
	}
	return score
}

func wordStart(text []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	prev, cur := text[idx-1], text[idx]
	switch prev {
	case ' ', '.', '_', '-', '/', ':':
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}
