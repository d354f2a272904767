package native

import "errors"

// ErrNoScreen is returned by a factory built without a screen.
var ErrNoScreen = errors.New("native: no screen")
