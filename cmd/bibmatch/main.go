// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibmatch CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibmatch/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value
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

// rootCmd is the base command for the bibmatch CLI.
var rootCmd = &cobra.Command{
	Use:   "bibmatch",
	Short: "Reconcile BibTeX bibliographies against the OpenAlex catalog",
	Long: `bibmatch links BibTeX entries to OpenAlex work records. Entries with a
DOI resolve exactly in batches; the rest are matched by fuzzy scoring over
normalized titles, author names, and publication years. Matched entries gain
an "openalex" field and each input file is written back as "<name>-oa.bib".

Each operation is a subcommand: process runs the matcher, fetch downloads
full work metadata for matched entries, and missing lists entries that are
still unmatched.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibmatch.yaml or ~/.config/bibmatch/config.yaml)")
	rootCmd.PersistentFlags().String("email", "", "contact email sent to OpenAlex for polite pool access")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibmatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibmatch"))
		}
	}

	viper.SetEnvPrefix("BIBMATCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// resolveEmail picks the contact email from the flag, config file, or
// the openalex-email secret, in that order.
func resolveEmail(cmd *cobra.Command) string {
	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		email = viper.GetString("email")
	}
	return secretDefault("openalex-email", email)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
