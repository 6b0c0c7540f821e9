package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dErrors "shareregistry/pkg/domain-errors"
)

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for range 50 {
		pw, err := GeneratePassword(DefaultPasswordLength)
		require.NoError(t, err)
		assert.Len(t, pw, 12)
		for _, r := range pw {
			assert.True(t, strings.ContainsRune(PasswordAlphabet, r), "unexpected %q", r)
		}
		seen[pw] = true
	}
	assert.Greater(t, len(seen), 45)

	pw, err := GeneratePassword(0)
	require.NoError(t, err)
	assert.Len(t, pw, DefaultPasswordLength)
}

func TestAlphabetExcludesAmbiguous(t *testing.T) {
	for _, r := range "IOl" {
		assert.NotContains(t, PasswordAlphabet, string(r))
	}
}

func TestRandomHex(t *testing.T) {
	for _, n := range []int{4, 5, 6} {
		s, err := RandomHex(n)
		require.NoError(t, err)
		assert.Regexp(t, "^[0-9a-f]+$", s)
		assert.Len(t, s, n)
	}
}

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	require.NoError(t, h.Verify("correct horse", hash))

	err = h.Verify("wrong", hash)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = h.Hash("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestNewHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, 12, NewHasher(12).cost)
}
