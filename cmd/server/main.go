package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/journeymate/backend/internal/apperrors"
	"github.com/journeymate/backend/internal/events"
	"github.com/journeymate/backend/internal/models"
	"github.com/journeymate/backend/internal/repositories"
	"github.com/journeymate/backend/internal/router"
	"github.com/journeymate/backend/internal/services"
	"github.com/journeymate/backend/pkg/config"
	"github.com/journeymate/backend/pkg/filestore"
	"github.com/journeymate/backend/pkg/firebase"
	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:  "journeymate",
		Usage: "JourneyMate travel companion API",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			createAdminCommand(),
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			return runServer(ctx, config.Load())
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server (default)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "listen port, overrides PORT"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := config.Load()
			if port := c.String("port"); port != "" {
				cfg.Port = port
			}
			return runServer(ctx, cfg)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema and seed roles",
		Action: func(ctx context.Context, _ *cli.Command) error {
			db, err := config.InitDB(config.Load())
			if err != nil {
				return err
			}
			defer db.CloseDB()
			return repositories.Migrate(ctx, db.SQL)
		},
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Grant ADMIN to the account registered under email, registering it first when missing",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "required when the account does not exist yet"},
			&cli.StringFlag{Name: "full-name", Value: "Administrator"},
			&cli.StringFlag{Name: "username", Usage: "generated from the full name when empty"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := config.Load()
			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}
			defer db.CloseDB()
			if err := repositories.Migrate(ctx, db.SQL); err != nil {
				return err
			}
			files, err := filestore.New(cfg.UploadDir)
			if err != nil {
				return err
			}

			users := services.NewUserService(repositories.NewStore(db.SQL), files, nil, cfg.BcryptCost)
			admin, err := users.GrantAdmin(ctx, c.String("email"))
			if err == nil {
				fmt.Printf("granted admin to %s (%s)\n", admin.Username, admin.UID)
				return nil
			}
			if !apperrors.Is(err, apperrors.KindNotFound) {
				return err
			}
			if c.String("password") == "" {
				return fmt.Errorf("no account for %s, --password is required to create one", c.String("email"))
			}
			admin, err = users.CreateAdmin(ctx, models.RegisterRequest{
				Username: c.String("username"),
				Email:    c.String("email"),
				Password: c.String("password"),
				FullName: c.String("full-name"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("created admin %s (%s)\n", admin.Username, admin.UID)
			return nil
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	db, err := config.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}
	defer db.CloseDB()

	if err := repositories.Migrate(ctx, db.SQL); err != nil {
		return err
	}

	files, err := filestore.New(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to prepare upload dir: %w", err)
	}

	deps := router.Deps{
		Config: cfg,
		DB:     db.SQL,
		Files:  files,
		Redis:  config.NewRedisClient(cfg.Redis),
	}
	if deps.Redis != nil {
		defer deps.Redis.Close()
	}

	sinks := []events.Sink{events.LogSink{}}
	if db.Mongo != nil {
		deps.Mongo = db.Mongo.Database(cfg.MongoDatabase)
		sinks = append(sinks, events.NewActivitySink(repositories.NewMongoActivityRepository(deps.Mongo)))
	}
	if cfg.RabbitMQURL != "" {
		publisher, err := events.DialAMQP(cfg.RabbitMQURL, cfg.EventsQueue)
		if err != nil {
			log.Printf("RabbitMQ unavailable, domain events not published: %v", err)
		} else {
			defer publisher.Close()
			sinks = append(sinks, publisher)
		}
	}
	deps.Events = events.NewRecorder(sinks...)

	fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case err == nil:
		deps.Firebase = fb.AuthClient
	case errors.Is(err, firebase.ErrNotConfigured):
	default:
		log.Printf("Firebase disabled: %v", err)
	}

	e := router.New(deps)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: e, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
