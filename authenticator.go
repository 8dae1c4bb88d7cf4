package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// IdentityDirectory is the slice of the account directory the gateway
// needs: a single identifier lookup, login or email auto-detected.
type IdentityDirectory interface {
	FindByIdentifier(ctx context.Context, identifier string) (*Account, error)
}

// Authenticator verifies credentials and issues tokens.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string, rememberMe bool) (string, error)
}

// Auther is the authentication gateway. It holds no session state; the
// token it returns is the only artifact of a successful login.
type Auther struct {
	directory IdentityDirectory
	hasher    PasswordHasher
	tokens    TokenService
	logger    Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Auther
func NewAuthenticator(directory IdentityDirectory, tokens TokenService) *Auther {
	return &Auther{
		directory: directory,
		hasher:    BcryptHasher{},
		tokens:    tokens,
		logger:    defLogger{},
	}
}

// WithLogger overrides the logger used by the gateway.
func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithPasswordHasher overrides the credential primitive.
func (s *Auther) WithPasswordHasher(hasher PasswordHasher) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// TokenService returns the token service used by this gateway
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Login verifies the identifier/password pair and returns a signed token
// carrying the account's authorities. The identifier may be a login name or
// an email address.
func (s *Auther) Login(ctx context.Context, identifier, password string, rememberMe bool) (string, error) {
	account, err := s.directory.FindByIdentifier(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Debug("login for unknown identifier", "identifier", identifier)
			return "", ErrUserNotFound
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account during login")
	}

	if !account.Activated {
		s.logger.Warn("login blocked for unactivated account", "login", account.Login)
		return "", ErrUserNotActivated
	}

	if err := s.hasher.ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		s.logger.Debug("login password mismatch", "login", account.Login)
		return "", ErrBadCredentials
	}

	token, err := s.tokens.Issue(account.Login, account.Authorities, rememberMe)
	if err != nil {
		s.logger.Error("login failed to issue token", "login", account.Login, "error", err)
		return "", err
	}

	return token, nil
}

// PrincipalFromToken validates a bearer token and returns its claims.
func (s *Auther) PrincipalFromToken(raw string) (AuthClaims, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		s.logger.Debug("token validation failed", "error", err)
		return nil, err
	}

	return claims, nil
}
