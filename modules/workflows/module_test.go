package workflows

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_Close(t *testing.T) {
	m := NewModule(nil)
	closer, ok := m.(io.Closer)
	require.True(t, ok, "module owns the cache client and must release it")
	assert.NoError(t, closer.Close(), "close is safe when the cache never connected")
}
