// cmd/server/root.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jason-s-yu/pinpoint/internal/cache"
	"github.com/jason-s-yu/pinpoint/internal/config"
	"github.com/jason-s-yu/pinpoint/internal/database"
	"github.com/jason-s-yu/pinpoint/internal/handlers"
	"github.com/jason-s-yu/pinpoint/internal/models"
	"github.com/jason-s-yu/pinpoint/internal/room"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const publishTimeout = 2 * time.Second

type flags struct {
	bind    string
	port    int
	verbose bool
}

func newCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           "pinpoint",
		Short:         "Room coordinator for multiplayer geolocation trivia.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			if fs.Changed("bind") {
				cfg.Bind = f.bind
			}
			if fs.Changed("port") {
				cfg.Port = f.port
			}
			if f.verbose {
				cfg.LogLevel = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVarP(&f.bind, "bind", "b", "0.0.0.0", "address to bind to (env: BIND)")
	fs.IntVarP(&f.port, "port", "p", 8080, "port to listen on (env: PORT)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log at debug level")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("pinpoint v{{.Version}}\n")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := cfg.NewLogger()
	logger.Infof("START: pinpoint v%s", releaseVersion)

	coord := room.NewCoordinator(logger)
	coord.OnEmpty = func(code string) {
		logger.WithField("room", code).Debug("room released")
	}

	var store handlers.DataStore
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		store = db
		logger.Info("connected to postgres")
	} else {
		logger.Warn("DATABASE_URL not set; leaderboard, question and player routes disabled")
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		answers := cache.NewAnswerLog(rdb, cfg.AnswerQueue)
		coord.OnAnswer = publishAnswers(logger, answers)
		logger.Infof("publishing answers to redis list %q", answers.Queue)
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: handlers.NewRouter(handlers.Deps{
			Logger:      logger,
			Coordinator: coord,
			Store:       store,
			PublicURL:   cfg.PublicURL,
			WS: handlers.WSOptions{
				PingInterval: cfg.PingInterval,
				WriteTimeout: cfg.WriteTimeout,
				SendBuffer:   cfg.SendBuffer,
			},
		}),
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Infof("SERVE: listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// publishAnswers forwards accepted answers to the answer log without holding
// up the caller.
func publishAnswers(logger logrus.FieldLogger, answers *cache.AnswerLog) func(models.AnswerRecord) {
	return func(rec models.AnswerRecord) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := answers.Publish(ctx, rec); err != nil {
				logger.WithFields(logrus.Fields{
					"room": rec.RoomCode,
					"conn": rec.PlayerID,
				}).Warnf("failed to publish answer: %v", err)
			}
		}()
	}
}
