package session

import "fmt"

// ChangeKind classifies a session change notification.
type ChangeKind uint8

const (
	ChangeOpened ChangeKind = iota
	ChangeClosed
	ChangeActivated
	ChangeDisplay
	ChangeRenamed
	ChangeBreakpoints
	ChangeCurrentLine
	ChangeValidation
	ChangeCompletion
	ChangeContextMenu
	ChangePalette
	ChangeReloaded
)

var changeNames = [...]string{
	ChangeOpened:      "opened",
	ChangeClosed:      "closed",
	ChangeActivated:   "activated",
	ChangeDisplay:     "display",
	ChangeRenamed:     "renamed",
	ChangeBreakpoints: "breakpoints",
	ChangeCurrentLine: "current-line",
	ChangeValidation:  "validation",
	ChangeCompletion:  "completion",
	ChangeContextMenu: "context-menu",
	ChangePalette:     "palette",
	ChangeReloaded:    "reloaded",
}

// String returns the change name.
func (k ChangeKind) String() string {
	if int(k) < len(changeNames) {
		return changeNames[k]
	}
	return fmt.Sprintf("change(%d)", uint8(k))
}

// Change describes one session state change. Item is nil for global
// changes such as display updates or an activation that left no item active.
type Change struct {
	Kind ChangeKind
	Item *Item

	// OldPath is set for ChangeRenamed.
	OldPath string
}

type subscriber struct {
	id int
	fn func(Change)
}
