package accounts

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the account directory. Lookups by login and email are
// case-insensitive; activation and reset keys are unique at the storage
// layer as defense in depth against key collisions.
type Users interface {
	repository.Repository[*Account]

	FindByLogin(ctx context.Context, login string) (*Account, error)
	FindByLoginTx(ctx context.Context, tx bun.IDB, login string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	FindByActivationKey(ctx context.Context, key string) (*Account, error)
	FindByActivationKeyTx(ctx context.Context, tx bun.IDB, key string) (*Account, error)
	FindByResetKey(ctx context.Context, key string) (*Account, error)
	FindByResetKeyTx(ctx context.Context, tx bun.IDB, key string) (*Account, error)

	// FindByIdentifier resolves an account by login or email, auto-detected
	// by email syntax.
	FindByIdentifier(ctx context.Context, identifier string) (*Account, error)

	// FindNotActivatedBefore returns unactivated accounts that still hold an
	// activation key and were created before the cutoff.
	FindNotActivatedBefore(ctx context.Context, cutoff time.Time) ([]*Account, error)

	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type users struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Users                           = (*users)(nil)
	_ repository.Repository[*Account] = (*users)(nil)
)

// NewUsersRepository builds the bun-backed account directory
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "login"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) FindByLogin(ctx context.Context, login string) (*Account, error) {
	return a.FindByLoginTx(ctx, a.db, login)
}

func (a *users) FindByLoginTx(ctx context.Context, tx bun.IDB, login string) (*Account, error) {
	return a.findOne(ctx, tx, "lower(?TableAlias.login) = lower(?)", login)
}

func (a *users) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return a.FindByEmailTx(ctx, a.db, email)
}

func (a *users) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	return a.findOne(ctx, tx, "lower(?TableAlias.email) = lower(?)", email)
}

func (a *users) FindByActivationKey(ctx context.Context, key string) (*Account, error) {
	return a.FindByActivationKeyTx(ctx, a.db, key)
}

func (a *users) FindByActivationKeyTx(ctx context.Context, tx bun.IDB, key string) (*Account, error) {
	return a.findOne(ctx, tx, "?TableAlias.activation_key = ?", key)
}

func (a *users) FindByResetKey(ctx context.Context, key string) (*Account, error) {
	return a.FindByResetKeyTx(ctx, a.db, key)
}

func (a *users) FindByResetKeyTx(ctx context.Context, tx bun.IDB, key string) (*Account, error) {
	return a.findOne(ctx, tx, "?TableAlias.reset_key = ?", key)
}

func (a *users) FindByIdentifier(ctx context.Context, identifier string) (*Account, error) {
	trimmed := strings.TrimSpace(identifier)
	if isEmail(trimmed) {
		return a.FindByEmail(ctx, trimmed)
	}
	return a.FindByLogin(ctx, trimmed)
}

func (a *users) FindNotActivatedBefore(ctx context.Context, cutoff time.Time) ([]*Account, error) {
	var records []*Account
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.activated = ?", false).
		Where("?TableAlias.activation_key IS NOT NULL").
		Where("?TableAlias.created_at < ?", cutoff).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *users) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return a.DeleteByIDTx(ctx, a.db, id)
}

func (a *users) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Account)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (a *users) findOne(ctx context.Context, tx bun.IDB, where string, value any) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where(where, value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"where": where,
					"value": fmt.Sprintf("%v", value),
				})
		}
		return nil, err
	}

	return record, nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	record.NormalizeIdentity()

	if record.LangKey == "" {
		record.LangKey = DefaultLangKey
	}

	if len(record.Authorities) == 0 {
		record.Authorities = []Authority{AuthorityUser}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func isEmail(identifier string) bool {
	_, err := mail.ParseAddress(identifier)
	return err == nil
}
