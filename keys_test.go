package accounts_test

import (
	"testing"

	"github.com/dershop/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	key := accounts.GenerateKey()
	require.Len(t, key, accounts.KeyLength)

	for _, r := range key {
		assert.True(t,
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			"unexpected character %q in key", r)
	}
}

func TestGenerateKeyUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key := accounts.GenerateActivationKey()
		require.False(t, seen[key], "duplicate key %q", key)
		seen[key] = true
	}
}
