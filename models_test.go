package accounts_test

import (
	"testing"
	"time"

	"github.com/dershop/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountAuthorities(t *testing.T) {
	account := &accounts.Account{Authorities: []accounts.Authority{accounts.AuthorityUser}}

	assert.True(t, account.HasAuthority(accounts.AuthorityUser))
	assert.False(t, account.HasAuthority(accounts.AuthorityAdmin))

	account.GrantAuthority(accounts.AuthorityAdmin)
	account.GrantAuthority(accounts.AuthorityAdmin)

	assert.True(t, account.HasAuthority(accounts.AuthorityAdmin))
	assert.Len(t, account.Authorities, 2)
}

func TestIsKnownAuthority(t *testing.T) {
	assert.True(t, accounts.IsKnownAuthority(accounts.AuthorityUser))
	assert.True(t, accounts.IsKnownAuthority(accounts.AuthorityAdmin))
	assert.False(t, accounts.IsKnownAuthority("superuser"))
	assert.False(t, accounts.IsKnownAuthority(""))
}

func TestMarkActivatedConsumesKey(t *testing.T) {
	key := "ACTIVATE12345678KEY0"
	account := &accounts.Account{ActivationKey: &key}

	account.MarkActivated()

	assert.True(t, account.Activated)
	assert.Nil(t, account.ActivationKey)
}

func TestResetKeyLifecycle(t *testing.T) {
	account := &accounts.Account{}
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	account.SetResetKey("RESETKEY234567890123", at)
	require.NotNil(t, account.ResetKey)
	require.NotNil(t, account.ResetAt)
	assert.Equal(t, at, *account.ResetAt)

	account.ClearResetKey()
	assert.Nil(t, account.ResetKey)
	assert.Nil(t, account.ResetAt)
}

func TestNormalizeIdentity(t *testing.T) {
	account := &accounts.Account{
		Login: "  Alice ",
		Email: "Alice@Example.COM",
	}

	account.NormalizeIdentity()

	assert.Equal(t, "alice", account.Login)
	assert.Equal(t, "alice@example.com", account.Email)
}
