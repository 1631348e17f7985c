// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibmatch/internal/pipeline"
)

var missingCmd = &cobra.Command{
	Use:   "missing <file-or-directory>",
	Short: "List processed entries that are still unmatched",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := &pipeline.Runner{Log: os.Stdout}
		_, err := runner.ReportMissing(args[0])
		return err
	},
}

func init() {
	rootCmd.AddCommand(missingCmd)
}
