package contacts

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
)

// UserResponse is the public projection of an account. The password hash and
// stored refresh token never leave the package.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

func newUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}

// statusFromError maps domain errors to HTTP statuses. Auth failures are
// 401, conflicts 409, lookups that found nothing 404, bad payloads 400,
// anything else 500.
func statusFromError(err error) int {
	if repository.IsRecordNotFound(err) {
		return fiber.StatusNotFound
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		switch rich.Category {
		case goerrors.CategoryAuth, goerrors.CategoryAuthz:
			return router.StatusUnauthorized
		case goerrors.CategoryNotFound:
			return fiber.StatusNotFound
		case goerrors.CategoryConflict:
			return fiber.StatusConflict
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			return router.StatusBadRequest
		}
	}

	return router.StatusInternalServerError
}

func errorMessage(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Message
	}
	return err.Error()
}

func renderError(ctx router.Context, err error) error {
	return ctx.JSON(statusFromError(err), map[string]string{
		"detail": errorMessage(err),
	})
}

type AuthController struct {
	Debug          bool
	Logger         Logger
	Repo           RepositoryManager
	Auther         SessionManager
	RegisterUser   *RegisterUserHandler
	ConfirmEmail   *ConfirmEmailHandler
	RequestConfirm *RequestConfirmationHandler
	ErrorHandler   router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithAuthDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func WithAuthRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithSessionManager(auther SessionManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithRegisterUserHandler(h *RegisterUserHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.RegisterUser = h
		return c
	}
}

func WithConfirmEmailHandler(h *ConfirmEmailHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ConfirmEmail = h
		return c
	}
}

func WithRequestConfirmationHandler(h *RequestConfirmationHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.RequestConfirm = h
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: renderError,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing SessionManager in auth controller...")
	}

	if c.RegisterUser == nil {
		panic("Missing RegisterUserHandler in auth controller...")
	}

	return c
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post("/auth/signup", controller.Signup).SetName("auth.signup")
	app.Post("/auth/login", controller.Login).SetName("auth.login")
	app.Get("/auth/refresh_token", controller.Refresh).SetName("auth.refresh")
	app.Get("/auth/confirmed_email/:token", controller.ConfirmedEmail).SetName("auth.confirm")
	app.Post("/auth/request_email", controller.RequestEmail).SetName("auth.request-email")

	return controller
}

// SignupPayload holds a registration request
type SignupPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(5, 16)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 25)),
	)
}

func (a *AuthController) Signup(ctx router.Context) error {
	payload := new(SignupPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": "error parsing body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=====================")
	}

	var created *User
	msg := RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(u *User) {
			created = u
		},
	}

	if err := a.RegisterUser.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("signup register user", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"user":   newUserResponse(created),
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

// LoginPayload holds user credentials
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": "error parsing body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": err.Error(),
		})
	}

	pair, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Warn("login failed", "email", payload.Email, "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pair)
}

// Refresh rotates a refresh token presented as a bearer credential.
func (a *AuthController) Refresh(ctx router.Context) error {
	raw, err := bearerToken(ctx)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, map[string]string{
			"detail": errorMessage(ErrUnauthorized),
		})
	}

	pair, err := a.Auther.Refresh(ctx.Context(), raw)
	if err != nil {
		a.Logger.Warn("refresh failed", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pair)
}

func (a *AuthController) ConfirmedEmail(ctx router.Context) error {
	token := ctx.Param("token")
	if token == "" {
		return a.ErrorHandler(ctx, ErrVerificationFailed)
	}

	var resp *ConfirmEmailResponse
	msg := ConfirmEmailMessage{
		Token: token,
		OnResponse: func(r *ConfirmEmailResponse) {
			resp = r
		},
	}

	if err := a.ConfirmEmail.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Warn("email confirmation failed", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if resp != nil && resp.AlreadyConfirmed {
		return ctx.JSON(router.StatusOK, map[string]string{
			"detail": "Your email is already confirmed",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"detail": "Email confirmed",
	})
}

// RequestEmailPayload asks for a new confirmation email
type RequestEmailPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r RequestEmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) RequestEmail(ctx router.Context) error {
	payload := new(RequestEmailPayload)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": "error parsing body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": err.Error(),
		})
	}

	var alreadyConfirmed bool
	msg := RequestConfirmationMessage{
		Email: payload.Email,
		OnResponse: func(confirmed bool) {
			alreadyConfirmed = confirmed
		},
	}

	if err := a.RequestConfirm.Execute(ctx.Context(), msg); err != nil {
		a.Logger.Error("request confirmation failed", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if alreadyConfirmed {
		return ctx.JSON(router.StatusOK, map[string]string{
			"detail": "Your email is already confirmed",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"detail": "Check your email for confirmation.",
	})
}

// RegisterUserRoutes mounts the account endpoints. These sit behind the
// bearer middleware; the resolved user is read from the router context.
func RegisterUserRoutes[T any](app router.Router[T], controller *AuthController, mw ...router.MiddlewareFunc) {
	app.Get("/users/me", controller.Me, mw...).SetName("users.me")
	app.Patch("/users/avatar", controller.UpdateAvatar, mw...).SetName("users.avatar")
}

func (a *AuthController) Me(ctx router.Context) error {
	user, ok := GetRouterUser(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	return ctx.JSON(router.StatusOK, newUserResponse(user))
}

// AvatarPayload carries the new avatar location
type AvatarPayload struct {
	AvatarURL string `json:"avatar_url"`
}

// Validate will run validation rules
func (r AvatarPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AvatarURL, validation.Required, is.URL),
	)
}

func (a *AuthController) UpdateAvatar(ctx router.Context) error {
	user, ok := GetRouterUser(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	payload := new(AvatarPayload)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": "error parsing body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": err.Error(),
		})
	}

	updated, err := a.Repo.Users().UpdateAvatar(ctx.Context(), user.Email, payload.AvatarURL)
	if err != nil {
		a.Logger.Error("update avatar", "email", user.Email, "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, newUserResponse(updated))
}

func bearerToken(ctx router.Context) (string, error) {
	header := ctx.GetString(router.HeaderAuthorization, "")
	scheme := "Bearer"
	l := len(scheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], scheme) && header[l] == ' ' {
		if token := strings.TrimSpace(header[l+1:]); token != "" {
			return token, nil
		}
	}
	return "", ErrUnauthorized
}
