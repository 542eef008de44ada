package clip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyWritesThroughBackend(t *testing.T) {
	var got string
	c := NewWithWriter(true, func(s string) error { got = s; return nil })
	require.NoError(t, c.Copy("name: Well-12"))
	assert.Equal(t, "name: Well-12", got)
}

func TestCopyDisabled(t *testing.T) {
	called := false
	c := NewWithWriter(false, func(string) error { called = true; return nil })
	assert.ErrorIs(t, c.Copy("x"), ErrUnavailable)
	assert.False(t, called)
	assert.False(t, c.Available())

	var nilClip *Clipboard
	assert.ErrorIs(t, nilClip.Copy("x"), ErrUnavailable)
}

func TestCopyWrapsBackendError(t *testing.T) {
	boom := errors.New("no display")
	c := NewWithWriter(true, func(string) error { return boom })
	err := c.Copy("x")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "copy to clipboard")
}

func TestCustomWriterIsAvailable(t *testing.T) {
	c := NewWithWriter(true, func(string) error { return nil })
	assert.True(t, c.Available())
	assert.False(t, NewWithWriter(true, nil).Available())
}
