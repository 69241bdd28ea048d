package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sweatloop/treatwheel/internal/database"
	"github.com/sweatloop/treatwheel/internal/database/migrations"
	"github.com/sweatloop/treatwheel/internal/setup"
	"github.com/sweatloop/treatwheel/internal/setup/config"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const logDir = "logs/engine_logs"

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "engine",
		Usage: "Treat wheel engine management tool",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run pending database migrations",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return runMigrations(ctx)
				},
			},
			{
				Name:  "check",
				Usage: "Evaluate spin eligibility for a user",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "user", Usage: "user ID", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					app, err := setup.InitializeApp(ctx, logDir, false)
					if err != nil {
						return fmt.Errorf("failed to initialize app: %w", err)
					}
					defer app.Cleanup()

					verdict, err := app.Engine.EvaluateEligibility(ctx, c.Int64("user"), time.Now())
					if err != nil {
						return err
					}

					app.Logger.Info("Eligibility evaluated",
						zap.Int64("userID", c.Int64("user")),
						zap.Bool("eligible", verdict.Eligible),
						zap.String("reason", string(verdict.Reason)),
						zap.Any("params", verdict.Params))

					return nil
				},
			},
			{
				Name:  "spin",
				Usage: "Attempt a spin for a user",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "user", Usage: "user ID", Required: true},
					&cli.StringFlag{Name: "seed", Usage: "client seed", Value: "cli"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					app, err := setup.InitializeApp(ctx, logDir, false)
					if err != nil {
						return fmt.Errorf("failed to initialize app: %w", err)
					}
					defer app.Cleanup()

					spin, verdict, err := app.Engine.DrawSpin(
						ctx, c.Int64("user"), c.String("seed"), time.Now())
					if err != nil {
						return err
					}

					if spin == nil {
						app.Logger.Info("Spin rejected",
							zap.String("reason", string(verdict.Reason)),
							zap.Any("params", verdict.Params))

						return nil
					}

					app.Logger.Info("Spin succeeded",
						zap.Int64("spinID", spin.ID),
						zap.String("reward", spin.RewardName),
						zap.String("portion", string(spin.Portion)),
						zap.Int("bonusMinutes", spin.BonusMinutes))

					return nil
				},
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// runMigrations connects with a development logger and applies pending
// migrations under the migrator lock.
func runMigrations(ctx context.Context) error {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.NewConnection(ctx, &cfg.PostgreSQL, logger, false)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	migrator := migrate.NewMigrator(db.DB(), migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	if err := migrator.Lock(ctx); err != nil {
		return err
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}

	if group.IsZero() {
		logger.Info("No new migrations to run (database is up to date)")
		return nil
	}

	logger.Info("Successfully migrated", zap.String("group", group.String()))

	return nil
}
