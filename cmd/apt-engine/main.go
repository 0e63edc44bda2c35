// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the apt-engine CLI.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/apt-engine/internal/logging"
	"github.com/pdiddy/apt-engine/internal/secrets"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// cfg is the resolved configuration, loaded before every command runs.
var cfg types.Config

// configFileUsed is the config file read by initConfig, if any.
var configFileUsed string

// rootCmd is the base command for the apt-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "apt-engine",
	Short: "Classify artists into Artist Personality Types",
	Long: `apt-engine assigns each artist in the catalog one of sixteen Artist
Personality Types. It gathers biographical and collection evidence, grades
its reliability, scores the artist on four axes (Lone/Social,
Abstract/Representational, Emotional/Meaning-driven, Flow/Constructive) and
persists the resulting profile.

Import artists with "artists import", run "classify" to process unclassified
artists, and inspect the outcome with "distribution" and "profile".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c
		initLogging(cfg.Log, configFileUsed, nil)

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logging.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./apt-engine.yaml or ~/.config/apt-engine/apt-engine.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (default data/apt.db)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initLogging configures the global logger from c, then reports the
// config file so that line honours the configured level and format.
// A nil out logs to stderr.
func initLogging(c types.LogConfig, configFile string, out io.Writer) {
	logging.Init(logging.Config{Level: c.Level, Format: c.Format, Output: out})
	if configFile != "" {
		logging.Info().Str("file", configFile).Msg("using config file")
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("apt-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "apt-engine"))
		}
	}

	viper.SetEnvPrefix("APT_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	registerDefaults(viper.GetViper(), types.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil {
		configFileUsed = viper.ConfigFileUsed()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
