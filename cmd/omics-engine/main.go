// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the omics-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/omics-engine/internal/secrets"
	"github.com/pdiddy/omics-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds access tokens loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// pipelineCfg holds the stage configuration decoded from the config file.
// Flags set on the command line take precedence over it.
var pipelineCfg types.PipelineConfig

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// stringSetting returns the flag value, unless the flag was left at its
// default and the config file provides a value.
func stringSetting(cmd *cobra.Command, name, cfgVal string) string {
	v, _ := cmd.Flags().GetString(name)
	if !cmd.Flags().Changed(name) && cfgVal != "" {
		return cfgVal
	}
	return v
}

// intSetting is stringSetting for integer flags.
func intSetting(cmd *cobra.Command, name string, cfgVal int) int {
	v, _ := cmd.Flags().GetInt(name)
	if !cmd.Flags().Changed(name) && cfgVal != 0 {
		return cfgVal
	}
	return v
}

// durationSetting is stringSetting for duration flags.
func durationSetting(cmd *cobra.Command, name string, cfgVal time.Duration) time.Duration {
	v, _ := cmd.Flags().GetDuration(name)
	if !cmd.Flags().Changed(name) && cfgVal != 0 {
		return cfgVal
	}
	return v
}

// rootCmd is the base command for the omics-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "omics-engine",
	Short: "Pipeline for assembling cancer-archive datasets into analysis-ready CSV",
	Long: `omics-engine assembles biomedical and clinical datasets from cancer
archives into a single analysis-ready CSV. Each pipeline stage is a
subcommand: search lists archive files, acquire downloads them, convert
parses raw delimited text into CSV, merge concatenates converted datasets
into the combined artifact, profile summarizes columns, and catalog
indexes the profiles for retrieval.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./omics-engine.yaml or ~/.config/omics-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("omics-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "omics-engine"))
		}
	}

	viper.SetEnvPrefix("OMICS_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	cfg, err := loadPipelineConfig(viper.GetViper())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
		return
	}
	pipelineCfg = cfg
}

// loadPipelineConfig decodes the stage configuration sections from v.
func loadPipelineConfig(v *viper.Viper) (types.PipelineConfig, error) {
	v.SetDefault("archive.enable_gdc", true)

	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
