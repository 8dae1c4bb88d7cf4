package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ResetWindow is how long a reset key stays redeemable after the request.
const ResetWindow = "24h"

// RequestPasswordResetSQL stamps a pending reset on the account row.
var RequestPasswordResetSQL = `UPDATE "users" AS "usr"
SET
	"reset_key" = ?,
	"reset_at" = ?,
	"updated_at" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

// CompletePasswordResetSQL installs the new hash and clears the reset
// columns in one statement.
var CompletePasswordResetSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"reset_key" = NULL,
	"reset_at" = NULL,
	"updated_at" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

// ChangePasswordSQL replaces the stored hash for a verified principal.
var ChangePasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"updated_at" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

// RequestPasswordReset starts a reset for the activated account holding the
// email. The empty result for unknown or unactivated addresses is
// deliberate: callers must not be able to learn whether an address exists.
func (m *AccountManager) RequestPasswordReset(ctx context.Context, email string) (*Account, error) {
	var account *Account

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		found, err := m.repo.Users().FindByEmailTx(ctx, tx, email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account for password reset")
		}

		if !found.Activated {
			return nil
		}

		key := m.keygen()
		now := m.now()

		res, err := m.repo.Users().RawTx(ctx, tx, RequestPasswordResetSQL, key, now, now, found.ID.String())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset key")
		}
		if len(res) == 0 {
			return nil
		}

		account = res[0]
		return nil
	})

	if err != nil {
		return nil, asRichError(err, "password reset request transaction failed")
	}

	if account != nil {
		m.logger.Debug("password reset requested", "login", account.Login)
		m.notifyReset(ctx, account)
	}

	return account, nil
}

// CompletePasswordReset redeems a reset key and installs the new password.
// A key that is unknown, already consumed, or past the 24 hour window is
// reported as an empty result; the window boundary itself is inclusive.
func (m *AccountManager) CompletePasswordReset(ctx context.Context, newPassword, key string) (*Account, error) {
	if key == "" {
		return nil, nil
	}

	var account *Account

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		found, err := m.repo.Users().FindByResetKeyTx(ctx, tx, key)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset key")
		}

		if found.ResetAt == nil {
			return nil
		}

		valid, err := IsWithinThresholdPeriodAt(*found.ResetAt, ResetWindow, m.now())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check reset key window")
		}
		if !valid {
			return nil
		}

		hash, err := m.hasher.HashPassword(newPassword)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		res, err := m.repo.Users().RawTx(ctx, tx, CompletePasswordResetSQL, hash, m.now(), found.ID.String())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
		}
		if len(res) == 0 {
			return nil
		}

		account = res[0]
		return nil
	})

	if err != nil {
		return nil, asRichError(err, "password reset transaction failed")
	}

	if account != nil {
		m.logger.Debug("password reset completed", "login", account.Login)
	}

	return account, nil
}

// ChangePassword replaces the password of the given principal after
// verifying the current one. The principal login is passed in explicitly;
// there is no ambient request identity.
func (m *AccountManager) ChangePassword(ctx context.Context, login, currentPassword, newPassword string) error {
	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		found, err := m.repo.Users().FindByLoginTx(ctx, tx, login)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account for password change")
		}

		if err := m.hasher.ComparePasswordAndHash(currentPassword, found.PasswordHash); err != nil {
			return ErrInvalidPassword
		}

		hash, err := m.hasher.HashPassword(newPassword)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		if _, err := m.repo.Users().RawTx(ctx, tx, ChangePasswordSQL, hash, m.now(), found.ID.String()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
		}

		return nil
	})

	if err != nil {
		return asRichError(err, "password change transaction failed")
	}

	m.logger.Debug("changed password", "login", login)
	return nil
}

func (m *AccountManager) notifyReset(ctx context.Context, account *Account) {
	if account.ResetKey == nil {
		return
	}
	if err := m.notifier.SendResetKey(ctx, account, *account.ResetKey); err != nil {
		m.logger.Warn("failed to deliver reset key", "login", account.Login, "error", err)
	}
}
