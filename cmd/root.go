// Package cmd provides the command-line interface for ope.
//
// Configuration is resolved from, highest priority first:
//  1. command-line flags (--port, --log-level, ...)
//  2. OPE_<SECTION>_<OPTION> environment variables (OPE_SERVER_PORT, OPE_CONTENT_DIR, ...)
//  3. the config file: --config, then OPE_CONFIG_FILE, then .ope.yml in the working directory
//  4. built-in defaults
package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/ope/internal/config"
	"github.com/conneroisu/ope/internal/logging"
)

// DefaultConfigName is the config file looked up in the working directory.
const DefaultConfigName = ".ope"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ope",
	Short: "Build and serve the OPE! music review site",
	Long: `ope renders the OPE! review blog from hand-written Markdown and serves
the read-only review API.

Quick Start:
  ope build                 Render the page from the content directory
  ope watch                 Rebuild whenever the Markdown changes
  ope serve                 Serve the page, the API and live reload
  ope convert               Convert songs.md into a review snapshot
  ope export --out f.csv    Export the reviews as CSV`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .ope.yml, or OPE_CONFIG_FILE)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
}

// initConfig points viper at the config file and binds the flags of the
// command being run. It runs before every command.
func initConfig(cmd *cobra.Command, _ []string) error {
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case os.Getenv("OPE_CONFIG_FILE") != "":
		viper.SetConfigFile(os.Getenv("OPE_CONFIG_FILE"))
	default:
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(DefaultConfigName)
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicitly named file must exist; the default one is optional.
		if !stderrors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return bindFlags(cmd.Flags(), map[string]string{
		"log-level":  "log.level",
		"log-format": "log.format",
	})
}

// bindFlags binds each named flag present in fs to its config key.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// loadConfig binds the command's own flags and loads the validated config.
func loadConfig(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
	if err := bindFlags(cmd.Flags(), keys); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command logger from the log section.
func newLogger(cmd *cobra.Command, cfg *config.Config) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	}), nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
