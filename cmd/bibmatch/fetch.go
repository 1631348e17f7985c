// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibmatch/internal/openalex"
	"github.com/pdiddy/bibmatch/internal/pipeline"
	"github.com/pdiddy/bibmatch/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <file-or-directory>",
	Short: "Download work metadata for matched entries",
	Long: `Fetch downloads the full OpenAlex record for every matched entry in the
processed ("-oa.bib") bibliographies under the given path. Records are
written to <output>/<year>/<work-id>.json, where the year comes from the
bibliography file name. Existing records are kept unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringP("output", "o", "works", "directory receiving <year>/<work-id>.json files")
	fetchCmd.Flags().Bool("force", false, "re-download records that already exist")
	fetchCmd.Flags().Int("workers", 8, "concurrent downloads")
	fetchCmd.Flags().String("store", "", "SQLite audit database recording fetched works")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")
	workers, _ := cmd.Flags().GetInt("workers")

	client := openalex.NewClient(types.RetrieverConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: defaultUserAgent},
		Email:      resolveEmail(cmd),
	})

	runner := &pipeline.Runner{Catalog: client, Log: os.Stdout}
	recorder, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()
	runner.Recorder = recorder

	summary, err := runner.FetchPath(cmd.Context(), args[0], types.FetchConfig{
		OutputDir: output,
		Force:     force,
		Workers:   workers,
	})
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d work(s) failed to fetch", summary.Failed)
	}
	return nil
}
