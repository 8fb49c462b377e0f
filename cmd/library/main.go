package main

import (
	"context"
	"fmt"
	stdLog "log"
	"os"
	"time"

	"github.com/Astemirdum/library-catalog/library/app"
	"github.com/Astemirdum/library-catalog/library/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

func loadConfig() *config.Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLog.Fatal("load envs from .env ", err)
	}
	return config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)
}

func main() {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Run: func(cmd *cobra.Command, args []string) {
			app.Run(loadConfig())
		},
	}

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run:           serve.Run,
	}

	migrate := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			return app.Migrate(cmd.Context(), loadConfig(), command)
		},
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert demonstration data into an empty catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			seeded, err := app.Seed(cmd.Context(), loadConfig())
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog seeded")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog not empty, nothing to do")
			}
			return nil
		},
	}

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Print a setup checklist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Verify(cmd.Context(), loadConfig(), os.Stdout)
		},
	}

	root.AddCommand(serve, migrate, seed, verify)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
