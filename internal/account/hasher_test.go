package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	digest, err := h.Hash("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", digest)
	assert.True(t, h.Verify(digest, "pw123"))
	assert.False(t, h.Verify(digest, "pw124"))
	assert.False(t, h.Verify("not-a-digest", "pw123"))

	again, err := h.Hash("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, digest, again)
}
