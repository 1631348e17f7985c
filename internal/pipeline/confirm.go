// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/bibmatch/pkg/types"
)

// ConsoleConfirmer prompts on a terminal for maybe-band matches.
type ConsoleConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm shows the citation next to the proposed candidate and reads
// a yes/no answer. Anything other than y/yes declines.
func (c *ConsoleConfirmer) Confirm(citation *types.Citation, candidate types.Candidate, score float64) (bool, error) {
	fmt.Fprintf(c.Out, "\npossible match for %q (score %.1f):\n", citation.Key, score)
	fmt.Fprintf(c.Out, "  entry:     %s (%s)\n", citation.Title(), citation.Year())
	fmt.Fprintf(c.Out, "  candidate: %s (%d) [%s]\n",
		candidate.Title, candidate.PublicationYear, candidate.ShortID())
	if len(candidate.Authors) > 0 {
		fmt.Fprintf(c.Out, "  authors:   %s\n", strings.Join(candidate.Authors, "; "))
	}
	fmt.Fprint(c.Out, "accept? [y/N]: ")

	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
