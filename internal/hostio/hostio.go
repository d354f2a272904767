// Package hostio is the content-access collaborator of the session: it loads
// and saves document text on behalf of the host.
//
// The session never touches a filesystem directly. Hosts pass a Services
// implementation at construction time; FileServices reads and writes real
// files and MemoryServices serves in-memory fixtures for tests and demos.
package hostio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
)

// ErrorKind classifies a content-access failure.
type ErrorKind uint8

const (
	// KindGeneric is any failure other than a missing file.
	KindGeneric ErrorKind = iota

	// KindNotFound means the path does not exist.
	KindNotFound
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "file not found"
	default:
		return "generic"
	}
}

// Error is the typed result of a failed load or save.
type Error struct {
	Kind    ErrorKind
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindNotFound {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds a KindNotFound error for path.
func NotFound(path string) *Error {
	return &Error{Kind: KindNotFound, Path: path, Err: fs.ErrNotExist}
}

// Generic builds a KindGeneric error.
func Generic(path, message string) *Error {
	return &Error{Kind: KindGeneric, Path: path, Message: message}
}

// IsNotFound reports whether err is a KindNotFound content-access error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound
}

// Services loads and saves document text.
type Services interface {
	// Load returns the text stored at path.
	Load(path string) (string, error)

	// Save stores text at path.
	Save(text, path string) error
}

// FileServices implements Services on the local filesystem.
type FileServices struct {
	// Perm is the mode used when creating files. Zero means 0o644.
	Perm os.FileMode
}

// Load reads the file at path.
func (f FileServices) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", NotFound(path)
		}
		return "", &Error{Kind: KindGeneric, Path: path, Message: err.Error(), Err: err}
	}
	return string(data), nil
}

// Save writes text to path, creating or truncating it.
func (f FileServices) Save(text, path string) error {
	perm := f.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err := os.WriteFile(path, []byte(text), perm); err != nil {
		return &Error{Kind: KindGeneric, Path: path, Message: err.Error(), Err: err}
	}
	return nil
}

// MemoryServices implements Services over an in-memory map.
type MemoryServices struct {
	mu    sync.RWMutex
	files map[string]string

	// FailSave, when set, is returned by every Save.
	FailSave error
}

// NewMemoryServices returns a MemoryServices seeded with files.
func NewMemoryServices(files map[string]string) *MemoryServices {
	m := &MemoryServices{files: make(map[string]string, len(files))}
	for k, v := range files {
		m.files[k] = v
	}
	return m
}

// Load returns the fixture stored at path.
func (m *MemoryServices) Load(path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.files[path]
	if !ok {
		return "", NotFound(path)
	}
	return text, nil
}

// Save stores text at path.
func (m *MemoryServices) Save(text, path string) error {
	if m.FailSave != nil {
		return m.FailSave
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string]string)
	}
	m.files[path] = text
	return nil
}

// Paths returns the stored paths in sorted order.
func (m *MemoryServices) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
