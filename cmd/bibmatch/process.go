// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibmatch/internal/openalex"
	"github.com/pdiddy/bibmatch/internal/pipeline"
	"github.com/pdiddy/bibmatch/internal/store"
	"github.com/pdiddy/bibmatch/pkg/types"
)

const defaultUserAgent = "bibmatch/0.1"

var processCmd = &cobra.Command{
	Use:   "process <file-or-directory>",
	Short: "Match bibliography entries against OpenAlex",
	Long: `Process reconciles one .bib file, or every .bib file under a directory,
against the OpenAlex catalog. Entries with a DOI are resolved exactly in
batches before fuzzy matching. Each input file is written back as
"<name>-oa.bib"; files whose output already exists are skipped unless
--force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().Bool("interactive", false, "ask before accepting mid-confidence matches")
	processCmd.Flags().Bool("force", false, "reprocess files whose -oa.bib output already exists")
	processCmd.Flags().Bool("strict", false, "raise acceptance thresholds from 85/60 to 90/70")
	processCmd.Flags().Bool("concurrent", false, "process multiple files in parallel (disables --interactive)")
	processCmd.Flags().Int("max-requests", 20, "maximum concurrent OpenAlex requests")
	processCmd.Flags().Int("max-files", 4, "maximum files processed in parallel with --concurrent")
	processCmd.Flags().String("store", "", "SQLite audit database recording every decision")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	interactive, _ := cmd.Flags().GetBool("interactive")
	force, _ := cmd.Flags().GetBool("force")
	strict, _ := cmd.Flags().GetBool("strict")
	concurrent, _ := cmd.Flags().GetBool("concurrent")
	maxRequests, _ := cmd.Flags().GetInt("max-requests")
	maxFiles, _ := cmd.Flags().GetInt("max-files")

	cfg := types.ProcessConfig{
		MatchConfig: types.MatchConfig{
			Interactive: interactive,
			Strict:      strict,
		},
		Force:      force,
		Concurrent: concurrent,
		MaxFiles:   maxFiles,
	}

	client := openalex.NewClient(types.RetrieverConfig{
		HTTPConfig:            types.HTTPConfig{UserAgent: defaultUserAgent},
		Email:                 resolveEmail(cmd),
		MaxConcurrentRequests: maxRequests,
	})

	runner := &pipeline.Runner{
		Catalog:   client,
		Confirmer: &pipeline.ConsoleConfirmer{In: os.Stdin, Out: os.Stdout},
		Log:       os.Stdout,
	}
	recorder, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()
	runner.Recorder = recorder

	summary, err := runner.ProcessPath(cmd.Context(), args[0], cfg)
	if err != nil {
		return err
	}
	fmt.Printf("%d file(s): %d matched, %d unmatched, %d via DOI, %d skipped, %d failed\n",
		summary.Files, summary.Matched, summary.Unmatched, summary.ViaDOI,
		summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed processing", summary.Failed)
	}
	return nil
}

// openStore opens the audit database named by the --store flag. With
// the flag unset it returns a nil recorder and a no-op closer.
func openStore(cmd *cobra.Command) (pipeline.Recorder, func(), error) {
	path, _ := cmd.Flags().GetString("store")
	if path == "" {
		return nil, func() {}, nil
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}
