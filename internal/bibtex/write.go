// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/bibmatch/pkg/types"
)

// Format renders citations as BibTeX text, two-space indented, in the
// given order with fields in their stored order.
func Format(citations []*types.Citation) string {
	var b strings.Builder
	for i, citation := range citations {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "@%s{%s,\n", citation.EntryType, citation.Key)
		for _, f := range citation.Fields {
			fmt.Fprintf(&b, "  %s = {%s},\n", f.Name, f.Value)
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// Save writes citations to path atomically: the content goes to a
// temp file in the same directory first, then replaces the target by
// rename. A failed run never leaves a truncated bibliography behind.
func Save(path string, citations []*types.Citation) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(Format(citations)); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
