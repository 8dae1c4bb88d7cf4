package accounts

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Authority is a named role granted to an account
type Authority = string

const (
	// AuthorityUser is the default authority every registered account gets
	AuthorityUser Authority = "user"
	// AuthorityAdmin marks administrative accounts
	AuthorityAdmin Authority = "admin"
)

// AllAuthorities returns the closed authority set
func AllAuthorities() []Authority {
	return []Authority{AuthorityUser, AuthorityAdmin}
}

// IsKnownAuthority reports whether name belongs to the closed authority set
func IsKnownAuthority(name string) bool {
	switch name {
	case AuthorityUser, AuthorityAdmin:
		return true
	default:
		return false
	}
}

// Account is the user account model
type Account struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Login         string      `bun:"login,notnull,unique" json:"login,omitempty"`
	Email         string      `bun:"email,notnull,unique" json:"email,omitempty"`
	FirstName     string      `bun:"first_name" json:"first_name,omitempty"`
	LastName      string      `bun:"last_name" json:"last_name,omitempty"`
	LangKey       string      `bun:"lang_key" json:"lang_key,omitempty"`
	PasswordHash  string      `bun:"password_hash,notnull" json:"-"`
	Activated     bool        `bun:"activated,notnull" json:"activated"`
	ActivationKey *string     `bun:"activation_key,nullzero,unique" json:"-"`
	ResetKey      *string     `bun:"reset_key,nullzero,unique" json:"-"`
	ResetAt       *time.Time  `bun:"reset_at,nullzero" json:"-"`
	Authorities   []Authority `bun:"authorities" json:"authorities,omitempty"`
	CreatedBy     string      `bun:"created_by" json:"created_by,omitempty"`
	CreatedAt     *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// DefaultLangKey is used when a registration candidate carries no language
const DefaultLangKey = "en"

// HasAuthority reports whether the account carries the given authority
func (a *Account) HasAuthority(name Authority) bool {
	for _, granted := range a.Authorities {
		if granted == name {
			return true
		}
	}
	return false
}

// GrantAuthority adds an authority, keeping the set free of duplicates
func (a *Account) GrantAuthority(name Authority) *Account {
	if !a.HasAuthority(name) {
		a.Authorities = append(a.Authorities, name)
	}
	return a
}

// MarkActivated consumes the activation key. Once cleared the key is never
// reused.
func (a *Account) MarkActivated() *Account {
	a.Activated = true
	a.ActivationKey = nil
	return a
}

// SetResetKey records a pending password reset: key and request timestamp
// are set and cleared together.
func (a *Account) SetResetKey(key string, at time.Time) *Account {
	a.ResetKey = &key
	a.ResetAt = &at
	return a
}

// ClearResetKey removes a pending password reset
func (a *Account) ClearResetKey() *Account {
	a.ResetKey = nil
	a.ResetAt = nil
	return a
}

// NormalizeIdentity lowercases login and email. Uniqueness on both columns
// is case-insensitive, so records are stored folded.
func (a *Account) NormalizeIdentity() *Account {
	a.Login = strings.ToLower(strings.TrimSpace(a.Login))
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	return a
}

// RegistrationCandidate carries the caller-supplied profile for a new
// registration. The raw password travels separately.
type RegistrationCandidate struct {
	Login     string `json:"login"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	LangKey   string `json:"lang_key"`
}
