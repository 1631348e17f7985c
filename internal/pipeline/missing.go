// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"

	"github.com/pdiddy/bibmatch/internal/bibtex"
)

// ReportMissing lists every entry in the processed bibliographies
// under root that still lacks an OpenAlex ID and returns the count.
func (r *Runner) ReportMissing(root string) (int, error) {
	files, err := processedFiles(root)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no processed bibliographies under %s", root)
	}

	missing := 0
	for _, file := range files {
		citations, err := bibtex.Load(file)
		if err != nil {
			fmt.Fprintf(r.log(), "error: %s: %v\n", file, err)
			continue
		}
		for _, citation := range citations {
			if citation.Matched() {
				continue
			}
			missing++
			fmt.Fprintf(r.log(), "%s: %s (%s)\n", file, citation.Key, citation.Title())
		}
	}
	fmt.Fprintf(r.log(), "%d entries without a match\n", missing)
	return missing, nil
}
