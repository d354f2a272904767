package session

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrNotOpen indicates the item is not (or no longer) open.
	ErrNotOpen = errors.New("item not open")

	// ErrEmptyPath indicates an open or rename without a path.
	ErrEmptyPath = errors.New("empty path")

	// ErrPathInUse indicates a rename onto a path another item holds.
	ErrPathInUse = errors.New("path already open")

	// ErrNoBackend indicates no backend factory can serve the request.
	ErrNoBackend = errors.New("no backend available")

	// ErrNoDelegate indicates the item has no live delegate.
	ErrNoDelegate = errors.New("no delegate")

	// ErrNoSaveHandler is returned by BaseDelegate.Save.
	ErrNoSaveHandler = errors.New("delegate does not save")

	// ErrInvalidLineHeight indicates a line height that is not positive.
	ErrInvalidLineHeight = errors.New("line height must be positive")

	// ErrNoLanguageServer indicates no language server was configured.
	ErrNoLanguageServer = errors.New("no language server configured")
)

// OpError records a failed session operation.
type OpError struct {
	Op   string // "open", "attach", "save", "reload", ...
	Path string
	Err  error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}
