package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadersAddPreservesOrder(t *testing.T) {
	h := NewHeaders()
	h.Add("set-cookie", "a=1")
	h.Add("set-cookie", "b=2")
	assert.Equal(t, []string{"a=1", "b=2"}, h.Values("set-cookie"))
}

func TestHeadersEqual(t *testing.T) {
	a := NewHeaders()
	a.Add(":method", "GET")
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.Add(":method", "POST")
	assert.False(t, a.Equal(b))
}

func TestHeadersGetEmpty(t *testing.T) {
	h := NewHeaders()
	assert.Equal(t, "", h.Get("missing"))
}
