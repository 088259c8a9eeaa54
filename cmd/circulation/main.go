package main

import (
	"errors"
	stdLog "log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Astemirdum/library-circulation/circulation/app"
	"github.com/Astemirdum/library-circulation/circulation/config"
)

func main() {
	// .env is optional outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		stdLog.Fatal("load envs from .env ", zap.Error(err))
	}

	var (
		debug   bool
		storage string
	)
	newConfig := func() *config.Config {
		level := zapcore.InfoLevel
		if debug {
			level = zapcore.DebugLevel
		}
		return config.NewConfig(
			config.WithLogLevel(level),
			config.WithWriteTimeout(time.Minute),
			config.WithStorage(storage),
		)
	}

	root := &cobra.Command{
		Use:          "circulation",
		Short:        "Library circulation and reservation engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging, overridden by LOG_LEVEL")
	root.PersistentFlags().StringVar(&storage, "storage", config.StoragePostgres, "postgres or memory, overridden by STORAGE")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API, the sweep timers and the assessment consumer",
			Run: func(cmd *cobra.Command, args []string) {
				app.Run(newConfig())
			},
		},
		&cobra.Command{
			Use:   "sweep",
			Short: "Expire stale holds and assess overdue loans once",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.Sweep(newConfig())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.Migrate(newConfig())
			},
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
