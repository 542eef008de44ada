// Package clip copies text to the system clipboard.
package clip

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when the platform has no usable clipboard.
var ErrUnavailable = errors.New("clipboard unavailable")

// Writer is the clipboard backend. Tests replace it.
type Writer func(text string) error

// Clipboard writes through a backend and can be switched off by configuration.
type Clipboard struct {
	enabled bool
	write   Writer
	native  bool
}

// New returns a clipboard backed by the system clipboard.
func New(enabled bool) *Clipboard {
	return &Clipboard{enabled: enabled, write: clipboard.WriteAll, native: true}
}

// NewWithWriter returns a clipboard backed by w.
func NewWithWriter(enabled bool, w Writer) *Clipboard {
	return &Clipboard{enabled: enabled, write: w}
}

// Available reports whether Copy can succeed at all.
func (c *Clipboard) Available() bool {
	if c == nil || !c.enabled {
		return false
	}
	if c.native && clipboard.Unsupported {
		return false
	}
	return c.write != nil
}

// Copy writes text to the clipboard.
func (c *Clipboard) Copy(text string) error {
	if !c.Available() {
		return ErrUnavailable
	}
	if err := c.write(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
