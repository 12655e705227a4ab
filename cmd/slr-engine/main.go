// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the slr-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aidul23/multiagent-slr-system/internal/api"
	"github.com/aidul23/multiagent-slr-system/internal/archive"
	"github.com/aidul23/multiagent-slr-system/internal/secrets"
	"github.com/aidul23/multiagent-slr-system/internal/store"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, otherwise the secret value
// for key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the slr-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "slr-engine",
	Short: "Drive a systematic literature review through its three phases",
	Long: `slr-engine drives a systematic literature review workflow against an SLR
backend: research setup (objective, questions, criteria, retrieval), paper
management (selection, upload, extraction), and reporting (report, refine,
interactive query).

All in-progress state persists locally, so any invocation picks up where the
last one left off. Run "slr-engine resume --project <id>" to see where a
project stands.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./slr-engine.yaml or ~/.config/slr-engine/config.yaml)")
	rootCmd.PersistentFlags().String("project", "", "project ID to operate on")
	rootCmd.PersistentFlags().String("backend-url", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for local state (overrides config)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("slr-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "slr-engine"))
		}
	}

	viper.SetEnvPrefix("SLR_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("backend.base_url", "http://localhost:8000")
	viper.SetDefault("backend.timeout", "60s")
	viper.SetDefault("backend.user_agent", "slr-engine/"+version)
	viper.SetDefault("store.data_dir", "data/state")
	viper.SetDefault("store.sync_writes", true)
	viper.SetDefault("archive.data_dir", "data/archive")
	viper.SetDefault("generation.model", "gpt-4o")
	viper.SetDefault("generation.search_strategy", "default")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// engineConfig resolves the full configuration from config file, env, and
// flags.
func engineConfig(cmd *cobra.Command) types.EngineConfig {
	cfg := types.EngineConfig{
		Backend: types.BackendConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("backend.timeout"),
				UserAgent: viper.GetString("backend.user_agent"),
			},
			BaseURL:    viper.GetString("backend.base_url"),
			APIKey:     secretDefault("slr-backend-api-key", viper.GetString("backend.api_key")),
			MaxRetries: viper.GetInt("backend.max_retries"),
		},
		Store: types.StoreConfig{
			DataDir:      viper.GetString("store.data_dir"),
			SyncWrites:   viper.GetBool("store.sync_writes"),
			CacheTTL:     viper.GetDuration("store.cache_ttl"),
			CacheCleanup: viper.GetDuration("store.cache_cleanup"),
		},
		Archive: types.ArchiveConfig{
			DataDir: viper.GetString("archive.data_dir"),
		},
		Generation: types.GenerationConfig{
			Model:          viper.GetString("generation.model"),
			SearchStrategy: viper.GetString("generation.search_strategy"),
		},
	}

	if url, _ := cmd.Flags().GetString("backend-url"); url != "" {
		cfg.Backend.BaseURL = url
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.Store.DataDir = filepath.Join(dir, "state")
		cfg.Archive.DataDir = filepath.Join(dir, "archive")
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 60 * time.Second
	}
	return cfg
}

// projectID returns the --project flag value or an error when missing.
func projectID(cmd *cobra.Command) (string, error) {
	pid, _ := cmd.Flags().GetString("project")
	if pid == "" {
		return "", fmt.Errorf("--project is required")
	}
	return pid, nil
}

// openStore opens the local state store for the resolved configuration.
func openStore(cfg types.EngineConfig) (*store.Store, error) {
	return store.Open(cfg.Store)
}

// openArchive opens the local paper archive.
func openArchive(cfg types.EngineConfig) (*archive.Archive, error) {
	return archive.Open(cfg.Archive)
}

// newClient builds the backend API client.
func newClient(cfg types.EngineConfig) *api.Client {
	return api.New(cfg.Backend)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
