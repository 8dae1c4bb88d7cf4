package accounts

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients alongside the HTTP status.
const (
	TextCodeUsernameAlreadyUsed = "USERNAME_ALREADY_USED"
	TextCodeEmailAlreadyUsed    = "EMAIL_ALREADY_USED"
	TextCodeInvalidPassword     = "INVALID_PASSWORD"
	TextCodeUserNotActivated    = "USER_NOT_ACTIVATED"
	TextCodeUserNotFound        = "USER_NOT_FOUND"
	TextCodeInvalidKey          = "INVALID_OR_EXPIRED_KEY"
	TextCodeInvalidToken        = "INVALID_TOKEN"
	TextCodeBadSecret           = "MISCONFIGURED_SECRET"
)

// ErrUsernameAlreadyUsed is returned when registering a login that belongs
// to an activated account.
var ErrUsernameAlreadyUsed = goerrors.New("login name already used", goerrors.CategoryConflict).
	WithTextCode(TextCodeUsernameAlreadyUsed).
	WithCode(goerrors.CodeConflict)

// ErrEmailAlreadyUsed is returned when registering an email that belongs
// to an activated account.
var ErrEmailAlreadyUsed = goerrors.New("email is already in use", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailAlreadyUsed).
	WithCode(goerrors.CodeConflict)

// ErrInvalidPassword is returned when the current password supplied to a
// password change does not match the stored hash.
var ErrInvalidPassword = goerrors.New("incorrect password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidPassword).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserNotActivated blocks authentication for accounts that never
// redeemed their activation key.
var ErrUserNotActivated = goerrors.New("user was not activated", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserNotActivated).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserNotFound is returned when no account matches the given identifier.
var ErrUserNotFound = goerrors.New("user could not be found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrBadCredentials is the non-leaking failure for password mismatches
// during authentication.
var ErrBadCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidOrExpiredKey is the uniform boundary response for activation or
// reset keys that are unknown, already consumed, or outside their window.
// The lifecycle layer itself reports those cases as empty results; only the
// transport boundary converts the empty result into this error.
var ErrInvalidOrExpiredKey = goerrors.New("key is invalid or has expired", goerrors.CategoryNotFound).
	WithTextCode(TextCodeInvalidKey).
	WithCode(goerrors.CodeNotFound)

// ErrInvalidToken covers expired, malformed and badly signed tokens without
// distinguishing between them.
var ErrInvalidToken = goerrors.New("token is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrMisconfiguredSecret is fatal at startup: the process must not serve
// requests without a usable signing secret.
var ErrMisconfiguredSecret = goerrors.New("token signing secret is missing or invalid", goerrors.CategoryInternal).
	WithTextCode(TextCodeBadSecret).
	WithCode(goerrors.CodeInternal)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode("EMPTY_PASSWORD").
	WithCode(goerrors.CodeBadRequest)

// ErrUnknownAuthority guards referential integrity between accounts and the
// closed authority set.
var ErrUnknownAuthority = goerrors.New("unknown authority name", goerrors.CategoryValidation).
	WithTextCode("UNKNOWN_AUTHORITY").
	WithCode(goerrors.CodeBadRequest)
