package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2Hasher(t *testing.T) {
	h := NewArgon2Hasher(testArgon2)

	encoded, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.Len(t, strings.Split(encoded, "$"), 2)

	assert.True(t, h.Verify("correct horse", encoded))
	assert.False(t, h.Verify("battery staple", encoded))

	again, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, again, "salts must differ")

	t.Run("malformed hashes never verify", func(t *testing.T) {
		for _, bad := range []string{"", "nodollar", "!!!$abc", "c2FsdA==$!!!", "a$b$c"} {
			assert.False(t, h.Verify("correct horse", bad), bad)
		}
	})
}
