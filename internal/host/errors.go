package host

import "errors"

var (
	// ErrNoPredicate is returned when a Lua trigger defines no
	// should_complete function.
	ErrNoPredicate = errors.New("host: lua trigger defines no should_complete function")

	// ErrGeneratedContent is returned when saving generated content without
	// a target path.
	ErrGeneratedContent = errors.New("host: generated content needs a path to save")
)
