package accounts_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/dershop/go-accounts"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockUsers implements accounts.Users. Only the methods the lifecycle and
// authentication layers exercise are stubbed; anything else reaching the
// embedded interface panics, which is what we want in a test.
type MockUsers struct {
	mock.Mock
	accounts.Users
}

func accountReturn(args mock.Arguments) (*accounts.Account, error) {
	var record *accounts.Account
	if v := args.Get(0); v != nil {
		record = v.(*accounts.Account)
	}
	return record, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *accounts.Account, criteria ...repository.InsertCriteria) (*accounts.Account, error) {
	return accountReturn(m.Called(ctx, tx, record))
}

func (m *MockUsers) UpdateTx(ctx context.Context, tx bun.IDB, record *accounts.Account, criteria ...repository.UpdateCriteria) (*accounts.Account, error) {
	return accountReturn(m.Called(ctx, tx, record))
}

func (m *MockUsers) RawTx(ctx context.Context, tx bun.IDB, sqlStr string, args ...any) ([]*accounts.Account, error) {
	called := m.Called(ctx, tx, sqlStr, args)
	var records []*accounts.Account
	if v := called.Get(0); v != nil {
		records = v.([]*accounts.Account)
	}
	return records, called.Error(1)
}

func (m *MockUsers) FindByLogin(ctx context.Context, login string) (*accounts.Account, error) {
	return accountReturn(m.Called(ctx, login))
}

func (m *MockUsers) FindByLoginTx(ctx context.Context, tx bun.IDB, login string) (*accounts.Account, error) {
	return accountReturn(m.Called(ctx, tx, login))
}

func (m *MockUsers) FindByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	return accountReturn(m.Called(ctx, email))
}

func (m *MockUsers) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*accounts.Account, error) {
	return accountReturn(m.Called(ctx, tx, email))
}

func (m *MockUsers) FindByActivationKeyTx(ctx context.Context, tx bun.IDB, key string) (*accounts.Account, error) {
	return accountReturn(m.Called(ctx, tx, key))
}

func (m *MockUsers) FindByResetKeyTx(ctx context.Context, tx bun.IDB, key string) (*accounts.Account, error) {
	return accountReturn(m.Called(ctx, tx, key))
}

func (m *MockUsers) FindByIdentifier(ctx context.Context, identifier string) (*accounts.Account, error) {
	return accountReturn(m.Called(ctx, identifier))
}

func (m *MockUsers) FindNotActivatedBefore(ctx context.Context, cutoff time.Time) ([]*accounts.Account, error) {
	called := m.Called(ctx, cutoff)
	var records []*accounts.Account
	if v := called.Get(0); v != nil {
		records = v.([]*accounts.Account)
	}
	return records, called.Error(1)
}

func (m *MockUsers) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUsers) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	return m.Called(ctx, tx, id).Error(0)
}

// MockRepositoryManager implements accounts.RepositoryManager. RunInTx runs
// the callback against a zero transaction so errors raised inside it
// propagate the way they would against a real database.
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	return m.Called().Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	if err := args.Error(0); err != nil {
		return err
	}
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Users() accounts.Users {
	args := m.Called()
	return args.Get(0).(accounts.Users)
}

// MockNotifier implements accounts.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendActivationKey(ctx context.Context, account *accounts.Account, key string) error {
	return m.Called(ctx, account, key).Error(0)
}

func (m *MockNotifier) SendResetKey(ctx context.Context, account *accounts.Account, key string) error {
	return m.Called(ctx, account, key).Error(0)
}

// MockTokenService implements accounts.TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(login string, authorities []string, rememberMe bool) (string, error) {
	args := m.Called(login, authorities, rememberMe)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (accounts.AuthClaims, error) {
	args := m.Called(tokenString)
	var claims accounts.AuthClaims
	if v := args.Get(0); v != nil {
		claims = v.(accounts.AuthClaims)
	}
	return claims, args.Error(1)
}

// plainHasher keeps lifecycle tests fast; bcrypt itself is covered in
// bcrypt_test.go.
type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", accounts.ErrNoEmptyString
	}
	return "hashed:" + password, nil
}

func (plainHasher) ComparePasswordAndHash(password, hash string) error {
	if hash != "hashed:"+password {
		return accounts.ErrBadCredentials
	}
	return nil
}

func newManager(repo *MockRepositoryManager, users *MockUsers) *accounts.AccountManager {
	repo.On("Users").Return(users).Maybe()
	return accounts.NewAccountManager(repo).
		WithLogger(testLogger{}).
		WithPasswordHasher(plainHasher{})
}

func txOptsNil() *sql.TxOptions {
	return (*sql.TxOptions)(nil)
}
