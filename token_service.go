package accounts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenService issues and validates signed, self-contained bearer tokens.
type TokenService interface {
	Issue(login string, authorities []string, rememberMe bool) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// TokenServiceImpl implements the TokenService interface on HS256 JWTs.
type TokenServiceImpl struct {
	signingKey         []byte
	validity           time.Duration
	rememberMeValidity time.Duration
	issuer             string
	logger             Logger
	now                func() time.Time
}

// NewTokenService creates a new TokenService. It fails with
// ErrMisconfiguredSecret when the signing key is empty so the process dies
// at startup rather than at first request.
func NewTokenService(cfg *Config) (*TokenServiceImpl, error) {
	key, err := cfg.SigningKey()
	if err != nil {
		return nil, err
	}

	return &TokenServiceImpl{
		signingKey:         key,
		validity:           cfg.TokenValidity(),
		rememberMeValidity: cfg.TokenValidityForRememberMe(),
		issuer:             cfg.Issuer,
		logger:             defLogger{},
		now:                time.Now,
	}, nil
}

// WithLogger overrides the logger used by the service.
func (ts *TokenServiceImpl) WithLogger(logger Logger) *TokenServiceImpl {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// WithClock injects a custom clock (useful for tests).
func (ts *TokenServiceImpl) WithClock(clock func() time.Time) *TokenServiceImpl {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

var _ TokenService = (*TokenServiceImpl)(nil)

// Issue creates a signed token encoding the subject and its authorities,
// expiring after the standard validity, or the extended one for remember-me
// sessions.
func (ts *TokenServiceImpl) Issue(login string, authorities []string, rememberMe bool) (string, error) {
	validity := ts.validity
	if rememberMe {
		validity = ts.rememberMeValidity
	}

	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   login,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Auth: authorities,
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and verifies a token string, returning the principal.
// Expired, malformed and badly signed tokens all map to ErrInvalidToken
// without revealing which check failed.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		ts.logger.Debug("TokenService validate rejected token", "error", err)
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode claims")
	return nil, ErrInvalidToken
}
