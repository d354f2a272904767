package native

// Clipboard is the cut/copy/paste register shared by the editors of one
// screen.
type Clipboard struct {
	text string
}

// Text returns the clipboard contents.
func (c *Clipboard) Text() string {
	if c == nil {
		return ""
	}
	return c.text
}

// SetText replaces the clipboard contents.
func (c *Clipboard) SetText(s string) {
	if c != nil {
		c.text = s
	}
}
