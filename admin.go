package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ManagedAccountInput is the admin-facing shape for provisioning and
// updating accounts.
type ManagedAccountInput struct {
	Login       string      `json:"login"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	LangKey     string      `json:"lang_key"`
	Authorities []Authority `json:"authorities"`
}

// CreateUser provisions an account on behalf of an administrator. The
// account is born activated with a random password and a pending reset key,
// so the owner sets their own password through the reset flow. The acting
// principal is passed explicitly and recorded in the audit fields.
func (m *AccountManager) CreateUser(ctx context.Context, actor string, input ManagedAccountInput) (*Account, error) {
	for _, name := range input.Authorities {
		if !IsKnownAuthority(name) {
			return nil, ErrUnknownAuthority
		}
	}

	now := m.now()
	resetKey := m.keygen()

	account := &Account{
		Login:        input.Login,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		LangKey:      input.LangKey,
		PasswordHash: RandomPasswordHash(),
		Activated:    true,
		Authorities:  input.Authorities,
		CreatedBy:    actor,
		CreatedAt:    &now,
	}
	account.NormalizeIdentity()
	account.SetResetKey(resetKey, now)

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := m.reclaimOrReject(ctx, tx, account.Login, account.Email); err != nil {
			return err
		}

		var err error
		if account, err = m.repo.Users().CreateTx(ctx, tx, account); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}
		return nil
	})

	if err != nil {
		return nil, asRichError(err, "account provisioning transaction failed")
	}

	m.logger.Debug("provisioned account", "login", account.Login, "actor", actor)
	m.notifyReset(ctx, account)

	return account, nil
}

// UpdateAccount applies a limited self-service profile update (names, email,
// language) for the given principal. A new email that belongs to another
// activated account fails with ErrEmailAlreadyUsed.
func (m *AccountManager) UpdateAccount(ctx context.Context, login, firstName, lastName, email, langKey string) (*Account, error) {
	var account *Account

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		found, err := m.repo.Users().FindByLoginTx(ctx, tx, login)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account for update")
		}

		found.FirstName = firstName
		found.LastName = lastName
		if langKey != "" {
			found.LangKey = langKey
		}
		if email != "" {
			found.Email = email
			found.NormalizeIdentity()

			holder, err := m.repo.Users().FindByEmailTx(ctx, tx, found.Email)
			if err != nil && !repository.IsRecordNotFound(err) {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email availability")
			}
			if holder != nil && holder.ID != found.ID && holder.Activated {
				return ErrEmailAlreadyUsed
			}
		}

		if account, err = m.repo.Users().UpdateTx(ctx, tx, found); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update account")
		}
		return nil
	})

	if err != nil {
		return nil, asRichError(err, "account update transaction failed")
	}

	m.logger.Debug("updated account", "login", login)
	return account, nil
}

// DeleteUser removes an account by login, the explicit Active to Deleted
// transition. Unknown logins are a no-op.
func (m *AccountManager) DeleteUser(ctx context.Context, actor, login string) error {
	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		found, err := m.repo.Users().FindByLoginTx(ctx, tx, login)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account for deletion")
		}

		if err := m.repo.Users().DeleteByIDTx(ctx, tx, found.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete account")
		}

		m.logger.Debug("deleted account", "login", found.Login, "actor", actor)
		return nil
	})

	if err != nil {
		return asRichError(err, "account deletion transaction failed")
	}

	return nil
}

// Authorities returns the closed authority set.
func (m *AccountManager) Authorities() []Authority {
	return AllAuthorities()
}
