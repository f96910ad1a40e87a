package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reviewdesk/config"
	"reviewdesk/internal/auth"
	"reviewdesk/internal/handler"
	"reviewdesk/internal/logger"
	"reviewdesk/internal/repository/memory"
	"reviewdesk/internal/repository/postgres"
	"reviewdesk/internal/service"
	"reviewdesk/pkg/database"
	"reviewdesk/pkg/server"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// Set at build time with -ldflags.
var Version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "reviewdesk",
		Usage:   "moderated customer reviews",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file read before the environment",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the web server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "in-memory",
						Usage: "keep all data in process memory instead of PostgreSQL",
					},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create the database tables",
				Action: migrate,
			},
			{
				Name:   "seed-admin",
				Usage:  "create the configured administrator if missing",
				Action: seedAdmin,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("reviewdesk: %v", err)
	}
}

func setup(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("env-file"))
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(os.Stdout, cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, nil
}

type stores struct {
	users    service.UserStore
	feedback service.FeedbackStore
	db       *database.DB
}

func (s *stores) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func openStores(ctx context.Context, cfg *config.Config, inMemory bool) (*stores, error) {
	if inMemory {
		logger.Warnf("running with the in-memory store, data is lost on exit")
		mem := memory.New()
		return &stores{users: memory.NewUserStore(mem), feedback: memory.NewFeedbackStore(mem)}, nil
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		users:    postgres.NewUserStore(db),
		feedback: postgres.NewFeedbackStore(db),
		db:       db,
	}, nil
}

func seed(ctx context.Context, cfg *config.Config, accounts *service.Accounts) error {
	created, err := accounts.SeedAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Infof("created administrator %s <%s>", cfg.Admin.Username, cfg.Admin.Email)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := openStores(ctx, cfg, cmd.Bool("in-memory"))
	if err != nil {
		return err
	}
	defer st.Close()

	accounts := service.NewAccounts(st.users)
	reviews := service.NewReviews(st.feedback, st.users)
	if cfg.Admin.Seed {
		if err := seed(ctx, cfg, accounts); err != nil {
			return err
		}
	}

	deps := handler.Deps{
		Reviews:      reviews,
		Accounts:     accounts,
		Tokens:       auth.NewTokens(cfg.JWT.Secret, cfg.JWT.Expiration),
		FlashKey:     cfg.Session.FlashKey,
		SecureCookie: cfg.IsProduction(),
	}
	if st.db != nil {
		deps.DB = st.db
	}
	h, err := handler.NewHandler(deps)
	if err != nil {
		return err
	}

	srv := server.NewHTTP(cfg.Addr(), server.Options{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	srv.Register(h.Router())

	var g errgroup.Group
	g.Go(func() error {
		logger.Infof("listening on %s (env %s)", srv.Addr(), cfg.Server.Env)
		err := srv.Run()
		cancel()
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Infof("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer done()
		return srv.Close(shutdownCtx)
	})
	return g.Wait()
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	st, err := openStores(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	logger.Infof("schema is up to date")
	return nil
}

func seedAdmin(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	st, err := openStores(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := seed(ctx, cfg, service.NewAccounts(st.users)); err != nil {
		return err
	}
	logger.Infof("administrator %s is present", cfg.Admin.Email)
	return nil
}
