package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/davidroman0O/pipefunc/internal/config"
	"github.com/davidroman0O/pipefunc/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipefunc",
		Short: "pipefunc runs pipelines of registered functions over JSON values",
		Long: `pipefunc loads a pipeline definition (YAML or JSON) naming builtin
functions and their arguments, and applies it to a JSON document.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// a missing .env file is fine
			_ = godotenv.Load()

			path, _ := cmd.Flags().GetString("config")
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				loaded.Log.Level = level
			}
			cfg = loaded
			logger = logging.New(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Log.Level))
			return nil
		},
	}

	// Persistent flags (available to all commands)
	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newRunCmd(), newDescribeCmd(), newSchemaCmd(), newFuncsCmd())
	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
