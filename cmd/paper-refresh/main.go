// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-refresh CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-refresh/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from --log-format and --verbose before any subcommand runs.
var logger *slog.Logger

// rootCmd is the base command for the paper-refresh CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-refresh",
	Short: "Keep a static page listing the latest arXiv papers fresh",
	Long: `paper-refresh queries the arXiv API for the most recently updated papers
matching a keyword and splices them, with a last-updated timestamp, into an
existing HTML page. Run "paper-refresh update" from cron or CI.

The page must contain a papers marker pair and a timestamp label; use
"paper-refresh init" to write a starter page.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("log-format")
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := logging.New(cmd.ErrOrStderr(), logging.Format(format), verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-refresh.yaml or ~/.config/paper-refresh/paper-refresh.yaml)")
	pf.String("log-format", "text", "log format: text or json")
	pf.BoolP("verbose", "v", false, "enable debug logging")

	if err := configure(viper.GetViper(), pf); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")

	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "paper-refresh"))
	}

	used, err := readConfig(viper.GetViper(), cfgFile, dirs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitFailure)
	}
	if used != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
}

// readConfig loads cfgFile, or paper-refresh.yaml from the first of dirs
// that has one. It returns the file used. A missing default file is not an
// error; an unreadable or malformed one is.
func readConfig(v *viper.Viper, cfgFile string, dirs ...string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("paper-refresh")
		v.SetConfigType("yaml")
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		name := cfgFile
		if name == "" {
			name = v.ConfigFileUsed()
		}
		return "", fmt.Errorf("reading config %s: %w", name, err)
	}
	return v.ConfigFileUsed(), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}
