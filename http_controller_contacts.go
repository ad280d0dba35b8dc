package contacts

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// ContactResponse is the public projection of a contact.
type ContactResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number"`
	Birthday    string `json:"birthday,omitempty"`
}

func newContactResponse(c *Contact) ContactResponse {
	resp := ContactResponse{
		ID:          c.ID.String(),
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
	}
	if c.Birthday != nil {
		resp.Birthday = c.Birthday.Format("2006-01-02")
	}
	return resp
}

func newContactListResponse(records []*Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(records))
	for _, c := range records {
		out = append(out, newContactResponse(c))
	}
	return out
}

type ContactsController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	ErrorHandler router.ErrorHandler
}

type ContactsControllerOption func(*ContactsController) *ContactsController

func WithContactsLogger(logger Logger) ContactsControllerOption {
	return func(c *ContactsController) *ContactsController {
		c.Logger = logger
		return c
	}
}

func WithContactsDebug(debug bool) ContactsControllerOption {
	return func(c *ContactsController) *ContactsController {
		c.Debug = debug
		return c
	}
}

func WithContactsRepo(repo RepositoryManager) ContactsControllerOption {
	return func(c *ContactsController) *ContactsController {
		c.Repo = repo
		return c
	}
}

func NewContactsController(opts ...ContactsControllerOption) *ContactsController {
	c := &ContactsController{
		Logger:       defLogger{},
		ErrorHandler: renderError,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in contacts controller...")
	}

	return c
}

// RegisterContactRoutes mounts the contact book endpoints behind the bearer
// middleware. The static paths go first so "search" and "birthdays" are not
// swallowed by the :id param.
func RegisterContactRoutes[T any](app router.Router[T], mw router.MiddlewareFunc, opts ...ContactsControllerOption) *ContactsController {
	controller := NewContactsController(opts...)

	app.Get("/contacts/search", controller.Search, mw).SetName("contacts.search")
	app.Get("/contacts/birthdays", controller.UpcomingBirthdays, mw).SetName("contacts.birthdays")
	app.Get("/contacts", controller.List, mw).SetName("contacts.list")
	app.Post("/contacts", controller.Create, mw).SetName("contacts.create")
	app.Get("/contacts/:id", controller.Show, mw).SetName("contacts.show")
	app.Put("/contacts/:id", controller.Update, mw).SetName("contacts.update")
	app.Delete("/contacts/:id", controller.Delete, mw).SetName("contacts.delete")

	return controller
}

// ContactPayload holds a contact create or update request
type ContactPayload struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Birthday    string `json:"birthday"`
}

// Validate will run validation rules
func (r ContactPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.PhoneNumber, validation.Required, validation.Length(5, 20)),
		validation.Field(&r.Birthday, validation.Date("2006-01-02")),
	)
}

func (r ContactPayload) record() (*Contact, error) {
	record := &Contact{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
	}

	if r.Birthday != "" {
		day, err := time.Parse("2006-01-02", r.Birthday)
		if err != nil {
			return nil, err
		}
		record.Birthday = &day
	}

	return record, nil
}

func (a *ContactsController) List(ctx router.Context) error {
	user, ok := GetRouterUser(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	skip := queryInt(ctx, "skip", 0)
	limit := queryInt(ctx, "limit", 10)

	records, err := a.Repo.Contacts().ListForUser(ctx.Context(), user, skip, limit)
	if err != nil {
		a.Logger.Error("contacts list", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, newContactListResponse(records))
}

func (a *ContactsController) Show(ctx router.Context) error {
	user, ok := GetRouterUser(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": "invalid contact id",
		})
	}

	record, err := a.Repo.Contacts().GetForUser(ctx.Context(), user, id)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, newContactResponse(record))
}

func (a *ContactsController) Create(ctx router.Context) error {
	user, ok := GetRouterUser(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	payload := new(ContactPayload)
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

	if a.Debug {
		fmt.Println("======= CONTACT CREATE ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=============================")
	}

	record, err := payload.record()
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": "invalid birthday",
		})
	}

	created, err := a.Repo.Contacts().CreateForUser(ctx.Context(), user, record)
	if err != nil {
		a.Logger.Error("contact create", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, newContactResponse(created))
}

func (a *ContactsController) Update(ctx router.Context) error {
	user, ok := GetRouterUser(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": "invalid contact id",
		})
	}

	payload := new(ContactPayload)
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

	record, err := payload.record()
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": "invalid birthday",
		})
	}

	updated, err := a.Repo.Contacts().UpdateForUser(ctx.Context(), user, id, record)
	if err != nil {
		a.Logger.Error("contact update", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, newContactResponse(updated))
}

func (a *ContactsController) Delete(ctx router.Context) error {
	user, ok := GetRouterUser(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": "invalid contact id",
		})
	}

	removed, err := a.Repo.Contacts().DeleteForUser(ctx.Context(), user, id)
	if err != nil {
		a.Logger.Error("contact delete", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, newContactResponse(removed))
}

func (a *ContactsController) Search(ctx router.Context) error {
	user, ok := GetRouterUser(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	query := ctx.Query("q", "")
	if query == "" {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"detail": "missing search query",
		})
	}

	skip := queryInt(ctx, "skip", 0)
	limit := queryInt(ctx, "limit", 10)

	records, err := a.Repo.Contacts().SearchForUser(ctx.Context(), user, query, skip, limit)
	if err != nil {
		a.Logger.Error("contact search", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, newContactListResponse(records))
}

func (a *ContactsController) UpcomingBirthdays(ctx router.Context) error {
	user, ok := GetRouterUser(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	records, err := a.Repo.Contacts().UpcomingBirthdays(ctx.Context(), user)
	if err != nil {
		a.Logger.Error("contact birthdays", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, newContactListResponse(records))
}

func queryInt(ctx router.Context, key string, def int) int {
	raw := ctx.Query(key, "")
	if raw == "" {
		return def
	}

	var value int
	if _, err := fmt.Sscanf(raw, "%d", &value); err != nil {
		return def
	}
	return value
}
