package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ActivateAccountSQL consumes the activation key. NULLing the column goes
// through raw SQL since the ORM update path skips zero values.
var ActivateAccountSQL = `UPDATE "users" AS "usr"
SET
	"activated" = TRUE,
	"activation_key" = NULL,
	"updated_at" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

// AnonymousUser is the audit principal recorded for self-registration.
const AnonymousUser = "anonymous"

// AccountManager orchestrates registration, activation, password reset and
// the purge of stale unactivated accounts. Every operation is a single
// read-modify-write transaction against the account directory.
type AccountManager struct {
	repo     RepositoryManager
	hasher   PasswordHasher
	notifier Notifier
	logger   Logger
	now      func() time.Time
	keygen   func() string
}

// NewAccountManager creates a manager with sane defaults.
func NewAccountManager(repo RepositoryManager) *AccountManager {
	return &AccountManager{
		repo:     repo,
		hasher:   BcryptHasher{},
		notifier: logNotifier{logger: defLogger{}},
		logger:   defLogger{},
		now:      time.Now,
		keygen:   GenerateKey,
	}
}

// WithLogger overrides the logger used by the manager.
func (m *AccountManager) WithLogger(logger Logger) *AccountManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithNotifier sets the sink used to deliver activation and reset keys.
func (m *AccountManager) WithNotifier(notifier Notifier) *AccountManager {
	if notifier != nil {
		m.notifier = notifier
	}
	return m
}

// WithPasswordHasher overrides the credential primitive.
func (m *AccountManager) WithPasswordHasher(hasher PasswordHasher) *AccountManager {
	if hasher != nil {
		m.hasher = hasher
	}
	return m
}

// WithClock injects a custom clock (useful for tests).
func (m *AccountManager) WithClock(clock func() time.Time) *AccountManager {
	if clock != nil {
		m.now = clock
	}
	return m
}

// WithKeyGenerator overrides activation/reset key generation.
func (m *AccountManager) WithKeyGenerator(keygen func() string) *AccountManager {
	if keygen != nil {
		m.keygen = keygen
	}
	return m
}

// RegisterUser creates a new unactivated account for the candidate. A login
// or email held by an activated account fails with ErrUsernameAlreadyUsed or
// ErrEmailAlreadyUsed; an unactivated holder is silently reclaimed.
func (m *AccountManager) RegisterUser(ctx context.Context, candidate RegistrationCandidate, rawPassword string) (*Account, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return m.registerUser(ctx, candidate, rawPassword)
	}
}

func (m *AccountManager) registerUser(ctx context.Context, candidate RegistrationCandidate, rawPassword string) (*Account, error) {
	account := &Account{
		Login:     candidate.Login,
		Email:     candidate.Email,
		FirstName: candidate.FirstName,
		LastName:  candidate.LastName,
		LangKey:   candidate.LangKey,
		CreatedBy: AnonymousUser,
	}
	account.NormalizeIdentity()

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := m.reclaimOrReject(ctx, tx, account.Login, account.Email); err != nil {
			return err
		}

		hash, err := m.hasher.HashPassword(rawPassword)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		key := m.keygen()
		now := m.now()

		account.PasswordHash = hash
		account.Activated = false
		account.ActivationKey = &key
		account.Authorities = []Authority{AuthorityUser}
		account.CreatedAt = &now

		if account, err = m.repo.Users().CreateTx(ctx, tx, account); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		return nil
	})

	if err != nil {
		return nil, asRichError(err, "user registration transaction failed")
	}

	m.logger.Debug("created account", "login", account.Login)
	m.notifyActivation(ctx, account)

	return account, nil
}

// reclaimOrReject enforces case-insensitive login/email uniqueness across
// activated accounts. An unactivated holder of either identifier is deleted
// so the registration can take its place.
func (m *AccountManager) reclaimOrReject(ctx context.Context, tx bun.Tx, login, email string) error {
	existing, err := m.repo.Users().FindByLoginTx(ctx, tx, login)
	if err != nil && !repository.IsRecordNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check login availability")
	}
	if existing != nil {
		if existing.Activated {
			return ErrUsernameAlreadyUsed
		}
		if err := m.repo.Users().DeleteByIDTx(ctx, tx, existing.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reclaim unactivated login")
		}
	}

	existing, err = m.repo.Users().FindByEmailTx(ctx, tx, email)
	if err != nil && !repository.IsRecordNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email availability")
	}
	if existing != nil {
		if existing.Activated {
			return ErrEmailAlreadyUsed
		}
		if err := m.repo.Users().DeleteByIDTx(ctx, tx, existing.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reclaim unactivated email")
		}
	}

	return nil
}

// ActivateRegistration redeems an activation key. An unknown or already
// consumed key yields an empty result, never an error, so callers cannot
// probe for valid keys.
func (m *AccountManager) ActivateRegistration(ctx context.Context, key string) (*Account, error) {
	if key == "" {
		return nil, nil
	}

	var account *Account

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		found, err := m.repo.Users().FindByActivationKeyTx(ctx, tx, key)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up activation key")
		}

		res, err := m.repo.Users().RawTx(ctx, tx, ActivateAccountSQL, m.now(), found.ID.String())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to activate account")
		}
		if len(res) == 0 {
			return nil
		}

		account = res[0]
		return nil
	})

	if err != nil {
		return nil, asRichError(err, "account activation transaction failed")
	}

	if account != nil {
		m.logger.Debug("activated account", "login", account.Login)
	}

	return account, nil
}

func (m *AccountManager) notifyActivation(ctx context.Context, account *Account) {
	if account.ActivationKey == nil {
		return
	}
	if err := m.notifier.SendActivationKey(ctx, account, *account.ActivationKey); err != nil {
		m.logger.Warn("failed to deliver activation key", "login", account.Login, "error", err)
	}
}

func asRichError(err error, msg string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}
