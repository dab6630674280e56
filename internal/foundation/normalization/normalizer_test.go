package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mode string

func TestNormalizer(t *testing.T) {
	n := New("mode", map[string]mode{"Fixed": "fixed", "linear": "linear"}, "linear")

	assert.Equal(t, mode("fixed"), n.Normalize("  FIXED "))
	assert.Equal(t, mode("linear"), n.Normalize("jitter"))

	_, ok := n.Lookup("jitter")
	assert.False(t, ok)

	v, err := n.NormalizeWithError("Linear")
	require.NoError(t, err)
	assert.Equal(t, mode("linear"), v)

	_, err = n.NormalizeWithError("jitter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid mode "jitter", valid options: fixed, linear`)

	keys := n.ValidKeys()
	keys[0] = "changed"
	assert.Equal(t, []string{"fixed", "linear"}, n.ValidKeys())
}
