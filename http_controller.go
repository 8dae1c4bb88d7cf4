package accounts

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// AccountController is the single transport boundary: it parses payloads,
// invokes the lifecycle manager and the authentication gateway, and owns
// every error-kind to status-code translation.
type AccountController struct {
	Manager *AccountManager
	Auther  Authenticator
	Tokens  TokenService
	Logger  Logger
}

// NewAccountController wires the controller with its collaborators.
func NewAccountController(manager *AccountManager, auther Authenticator, tokens TokenService) *AccountController {
	return &AccountController{
		Manager: manager,
		Auther:  auther,
		Tokens:  tokens,
		Logger:  defLogger{},
	}
}

// WithLogger overrides the controller logger.
func (ac *AccountController) WithLogger(logger Logger) *AccountController {
	if logger != nil {
		ac.Logger = logger
	}
	return ac
}

// RegisterRoutes mounts the account and authentication endpoints.
func (ac *AccountController) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/authenticate", ac.Authenticate)
	api.Post("/register", ac.Register)
	api.Get("/activate", ac.Activate)
	api.Post("/account/reset-password/init", ac.RequestPasswordReset)
	api.Post("/account/reset-password/finish", ac.FinishPasswordReset)

	api.Post("/account/change-password", RequireAuth(ac.Tokens), ac.ChangePassword)
	api.Post("/account", RequireAuth(ac.Tokens), ac.UpdateAccount)

	admin := api.Group("/admin", RequireAuthority(ac.Tokens, AuthorityAdmin))
	admin.Post("/users", ac.CreateUser)
	admin.Delete("/users/:login", ac.DeleteUser)
	admin.Get("/authorities", ac.ListAuthorities)
}

// LoginRequest mirrors the original login view model.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// Validate enforces the original field constraints.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Password, validation.Required, validation.Length(4, 100)),
	)
}

// TokenResponse is the authentication response body.
type TokenResponse struct {
	IDToken string `json:"id_token"`
}

// Authenticate handles POST /api/authenticate. The issued token travels in
// both the body and an Authorization header.
func (ac *AccountController) Authenticate(c *fiber.Ctx) error {
	var payload LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse login payload"))
	}

	if err := payload.Validate(); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload"))
	}

	token, err := ac.Auther.Login(c.Context(), payload.Username, payload.Password, payload.RememberMe)
	if err != nil {
		return ac.translate(c, err)
	}

	c.Set(AuthorizationHeader, bearerScheme+" "+token)
	return c.JSON(TokenResponse{IDToken: token})
}

// RegisterRequest carries a self-registration.
type RegisterRequest struct {
	Login     string `json:"login"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	LangKey   string `json:"lang_key"`
	Password  string `json:"password"`
}

// Validate enforces the original registration constraints.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(4, 100)),
	)
}

// Register handles POST /api/register.
func (ac *AccountController) Register(c *fiber.Ctx) error {
	var payload RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse registration payload"))
	}

	if err := payload.Validate(); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload"))
	}

	candidate := RegistrationCandidate{
		Login:     payload.Login,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		LangKey:   payload.LangKey,
	}

	account, err := ac.Manager.RegisterUser(c.Context(), candidate, payload.Password)
	if err != nil {
		return ac.translate(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(account)
}

// Activate handles GET /api/activate?key=...
func (ac *AccountController) Activate(c *fiber.Ctx) error {
	key := c.Query("key")

	account, err := ac.Manager.ActivateRegistration(c.Context(), key)
	if err != nil {
		return ac.translate(c, err)
	}
	if account == nil {
		return ac.translate(c, ErrInvalidOrExpiredKey)
	}

	return c.JSON(account)
}

// ResetInitRequest starts a password reset.
type ResetInitRequest struct {
	Email string `json:"email"`
}

// Validate checks the address shape.
func (r ResetInitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// RequestPasswordReset handles POST /api/account/reset-password/init. The
// response is identical whether or not the address matched an activated
// account, so the endpoint cannot be used to probe for registered emails.
func (ac *AccountController) RequestPasswordReset(c *fiber.Ctx) error {
	var payload ResetInitRequest
	if err := c.BodyParser(&payload); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse reset payload"))
	}

	if err := payload.Validate(); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid reset payload"))
	}

	if _, err := ac.Manager.RequestPasswordReset(c.Context(), payload.Email); err != nil {
		return ac.translate(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// ResetFinishRequest redeems a reset key.
type ResetFinishRequest struct {
	Key         string `json:"key"`
	NewPassword string `json:"new_password"`
}

// Validate checks key presence and password shape.
func (r ResetFinishRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(4, 100)),
	)
}

// FinishPasswordReset handles POST /api/account/reset-password/finish.
func (ac *AccountController) FinishPasswordReset(c *fiber.Ctx) error {
	var payload ResetFinishRequest
	if err := c.BodyParser(&payload); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse reset payload"))
	}

	if err := payload.Validate(); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid reset payload"))
	}

	account, err := ac.Manager.CompletePasswordReset(c.Context(), payload.NewPassword, payload.Key)
	if err != nil {
		return ac.translate(c, err)
	}
	if account == nil {
		return ac.translate(c, ErrInvalidOrExpiredKey)
	}

	return c.SendStatus(fiber.StatusOK)
}

// ChangePasswordRequest replaces the principal's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate checks both password shapes.
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(4, 100)),
	)
}

// ChangePassword handles POST /api/account/change-password for the
// authenticated principal.
func (ac *AccountController) ChangePassword(c *fiber.Ctx) error {
	claims, ok := PrincipalFromContext(c)
	if !ok {
		return ac.translate(c, ErrInvalidToken)
	}

	var payload ChangePasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse password payload"))
	}

	if err := payload.Validate(); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password payload"))
	}

	if err := ac.Manager.ChangePassword(c.Context(), claims.Subject(), payload.CurrentPassword, payload.NewPassword); err != nil {
		return ac.translate(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// UpdateAccountRequest carries the self-service profile update.
type UpdateAccountRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	LangKey   string `json:"lang_key"`
}

// Validate checks the optional email shape.
func (r UpdateAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
	)
}

// UpdateAccount handles POST /api/account for the authenticated principal.
func (ac *AccountController) UpdateAccount(c *fiber.Ctx) error {
	claims, ok := PrincipalFromContext(c)
	if !ok {
		return ac.translate(c, ErrInvalidToken)
	}

	var payload UpdateAccountRequest
	if err := c.BodyParser(&payload); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse account payload"))
	}

	if err := payload.Validate(); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid account payload"))
	}

	account, err := ac.Manager.UpdateAccount(c.Context(),
		claims.Subject(), payload.FirstName, payload.LastName, payload.Email, payload.LangKey)
	if err != nil {
		return ac.translate(c, err)
	}

	return c.JSON(account)
}

// CreateUser handles POST /api/admin/users.
func (ac *AccountController) CreateUser(c *fiber.Ctx) error {
	claims, ok := PrincipalFromContext(c)
	if !ok {
		return ac.translate(c, ErrInvalidToken)
	}

	var payload ManagedAccountInput
	if err := c.BodyParser(&payload); err != nil {
		return ac.translate(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse account payload"))
	}

	account, err := ac.Manager.CreateUser(c.Context(), claims.Subject(), payload)
	if err != nil {
		return ac.translate(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(account)
}

// DeleteUser handles DELETE /api/admin/users/:login.
func (ac *AccountController) DeleteUser(c *fiber.Ctx) error {
	claims, ok := PrincipalFromContext(c)
	if !ok {
		return ac.translate(c, ErrInvalidToken)
	}

	if err := ac.Manager.DeleteUser(c.Context(), claims.Subject(), c.Params("login")); err != nil {
		return ac.translate(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListAuthorities handles GET /api/admin/authorities.
func (ac *AccountController) ListAuthorities(c *fiber.Ctx) error {
	return c.JSON(ac.Manager.Authorities())
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// translate converts a domain error into the transport response. This is
// the only place error kinds map to status codes.
func (ac *AccountController) translate(c *fiber.Ctx, err error) error {
	ac.Logger.Debug("request failed", "path", c.Path(), "error", err)
	return writeError(c, err)
}

func writeError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "an unexpected server error occurred")
	}

	return c.Status(statusForCategory(richErr.Category)).JSON(errorBody{
		Message: richErr.Message,
		Code:    richErr.TextCode,
	})
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}
