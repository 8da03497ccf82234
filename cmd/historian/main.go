// cmd/historian/main.go drains the answer log from Redis into Postgres.
package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/pinpoint/internal/cache"
	"github.com/jason-s-yu/pinpoint/internal/config"
	"github.com/jason-s-yu/pinpoint/internal/database"
	"github.com/jason-s-yu/pinpoint/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

func main() {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "pinpoint-historian",
		Short:         "Persist answers from the Redis answer log into Postgres.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			if cfg.RedisAddr == "" {
				return errors.New("REDIS_ADDR is required")
			}
			logger := cfg.NewLogger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(ctx); err != nil {
				return err
			}

			rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
			if err != nil {
				return err
			}
			defer rdb.Close()

			hs := historian.NewService(rdb, db, cfg.AnswerQueue, cfg.HistorianBatchSize, cfg.HistorianFlushInterval, logger)
			return hs.Run(ctx)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	cobra.CheckErr(cmd.Execute())
}
