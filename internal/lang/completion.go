package lang

// CompletionKind classifies a completion candidate.
type CompletionKind uint8

const (
	KindFunction CompletionKind = iota
	KindClass
	KindVariable
	KindSignal
	KindConstant
	KindEnum
	KindProperty
	KindMethod
	KindKeyword
	KindSnippet
	KindFile
	KindNode
)

// String returns the display name of the kind.
func (k CompletionKind) String() string {
	switch k {
	case KindFunction:
		return "Function"
	case KindClass:
		return "Class"
	case KindVariable:
		return "Variable"
	case KindSignal:
		return "Signal"
	case KindConstant:
		return "Constant"
	case KindEnum:
		return "Enum"
	case KindProperty:
		return "Property"
	case KindMethod:
		return "Method"
	case KindKeyword:
		return "Keyword"
	case KindSnippet:
		return "Snippet"
	case KindFile:
		return "File"
	case KindNode:
		return "Node"
	default:
		return "Unknown"
	}
}

// Icon returns a single character badge used by compact popovers.
func (k CompletionKind) Icon() string {
	switch k {
	case KindFunction, KindMethod:
		return "f"
	case KindClass:
		return "C"
	case KindVariable, KindProperty:
		return "v"
	case KindSignal:
		return "s"
	case KindConstant, KindEnum:
		return "c"
	case KindKeyword:
		return "k"
	case KindSnippet:
		return "~"
	case KindFile:
		return "F"
	case KindNode:
		return "n"
	default:
		return "?"
	}
}

// Completion is one candidate offered by a completion popover.
type Completion struct {
	// Kind classifies the candidate.
	Kind CompletionKind

	// Label is what the popover displays.
	Label string

	// Insert is the literal text inserted when the candidate is accepted.
	Insert string
}

// Text returns the text to insert, falling back to the label.
func (c Completion) Text() string {
	if c.Insert != "" {
		return c.Insert
	}
	return c.Label
}

// CloneCompletions returns a copy of the candidate list.
func CloneCompletions(items []Completion) []Completion {
	if items == nil {
		return nil
	}
	out := make([]Completion, len(items))
	copy(out, items)
	return out
}
