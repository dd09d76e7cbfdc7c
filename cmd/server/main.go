package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"

	library "github.com/AHApeN4264/Book-library-manager"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("library"),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
	log := lgr.GetLogger("server")

	if err := run(lgr); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(lgr *glog.BaseLogger) error {
	log := lgr.GetLogger("server")

	cfg, err := library.LoadConfig()
	if err != nil {
		return err
	}

	if cfg.Debug {
		redacted := *cfg
		redacted.SigningKey = "[redacted]"
		fmt.Println(print.MaybePrettyJSON(redacted))
	}

	db, err := library.OpenDB(cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := library.SetupSchema(ctx, db); err != nil {
		return err
	}

	repo := library.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		return err
	}

	tokens := library.NewTokenService([]byte(cfg.SigningKey), cfg.TokenTTL, cfg.Issuer, lgr.GetLogger("auth:tokens"))

	provider := library.NewUserProvider(repo.Users()).
		WithLogger(lgr.GetLogger("auth:prv"))

	auther := library.NewAuthenticator(provider, tokens).
		WithLogger(lgr.GetLogger("auth"))

	gate := library.NewAuthGate(auther, repo.Users()).
		WithLogger(lgr.GetLogger("auth:gate"))

	engine := django.New(cfg.ViewsDir, ".html")
	engine.Reload(cfg.Debug)

	app := fiber.New(fiber.Config{
		AppName:           "book-library-manager",
		Views:             engine,
		PassLocalsToViews: true,
		UnescapePath:      true,
	})

	library.RegisterRoutes(app, library.AppControllers{
		HTML:  library.NewHTMLController(repo, auther).WithLogger(lgr.GetLogger("http")),
		Admin: library.NewAdminController(repo).WithLogger(lgr.GetLogger("admin")),
		API:   library.NewAPIController(repo, auther).WithLogger(lgr.GetLogger("api")),
		Gate:  gate,
	})

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-ch
		log.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Info("listening", "port", cfg.Port)

	return app.Listen(":" + cfg.Port)
}
