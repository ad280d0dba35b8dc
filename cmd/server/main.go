package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	contacts "github.com/goliatone/go-contacts"
	"github.com/goliatone/go-contacts/config"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config *gconfig.Container[*config.AppConfig]
	bunDB  *bun.DB
	repo   contacts.RepositoryManager
	auther *contacts.Auther
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

func (a *App) Config() *config.AppConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("contacts"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.AppConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if app.Config().GetServer().GetDebug() {
		fmt.Println("============")
		fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))
		fmt.Println("============")
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithRoutes(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.Config().GetServer().GetAddr())

	WaitExitSignal()

	if err := app.srv.Shutdown(ctx); err != nil {
		app.GetLogger("server").Error("shutdown error", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.Config().GetPersistence().GetDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*contacts.User)(nil))
	persistence.RegisterModel((*contacts.Contact)(nil))

	pcfg := app.Config().GetPersistence()
	dialect := sqlitedialect.New()
	client, err := persistence.New(pcfg, db, dialect)
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(contacts.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = contacts.NewRepositoryManager(client.DB())

	return app.repo.Validate()
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		a = router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: app.Config().GetServer().GetDebug(),
			StrictRouting:     false,
		}))
		a.Use(cors.New())
		return a
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	app.srv = srv
	return nil
}

func WithRoutes(ctx context.Context, app *App) error {
	authCfg := app.Config().GetAuth()

	auther := contacts.NewAuthenticator(app.repo.Users(), authCfg).
		WithLogger(app.GetLogger("auth"))
	app.auther = auther

	verifier := contacts.NewVerifier(auther.TokenService(), authCfg.GetConfirmationTokenTTL()).
		WithLogger(app.GetLogger("verify"))

	baseURL := app.Config().GetServer().GetBaseURL()
	mailer := contacts.NewLogMailer(app.GetLogger("mailer"))
	notifier := contacts.NewConfirmationNotifier(verifier, mailer, func(token string) string {
		return fmt.Sprintf("%s/api/auth/confirmed_email/%s", baseURL, token)
	}).WithLogger(app.GetLogger("notify"))

	registerUser := contacts.NewRegisterUserHandler(
		app.repo,
		contacts.NewHasher(authCfg.GetPasswordHashCost()),
		notifier,
	).WithLogger(app.GetLogger("register"))

	confirmEmail := contacts.NewConfirmEmailHandler(app.repo, verifier)
	requestConfirm := contacts.NewRequestConfirmationHandler(app.repo, notifier).
		WithLogger(app.GetLogger("request"))

	app.srv.Router().Get("/", func(ctx router.Context) error {
		return ctx.JSON(router.StatusOK, map[string]string{
			"detail": "contacts API",
		})
	})

	api := app.srv.Router().Group("/api")

	controller := contacts.RegisterAuthRoutes(api,
		contacts.WithAuthRepo(app.repo),
		contacts.WithSessionManager(auther),
		contacts.WithRegisterUserHandler(registerUser),
		contacts.WithConfirmEmailHandler(confirmEmail),
		contacts.WithRequestConfirmationHandler(requestConfirm),
		contacts.WithAuthLogger(app.GetLogger("auth:ctrl")),
		contacts.WithAuthDebug(app.Config().GetServer().GetDebug()),
	)

	protected := contacts.Protected(auther.TokenService(), app.repo.Users(), authCfg)

	contacts.RegisterUserRoutes(api, controller, protected)
	contacts.RegisterContactRoutes(api, protected,
		contacts.WithContactsRepo(app.repo),
		contacts.WithContactsLogger(app.GetLogger("contacts:ctrl")),
		contacts.WithContactsDebug(app.Config().GetServer().GetDebug()),
	)

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
