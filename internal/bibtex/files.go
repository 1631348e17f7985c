// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"io/fs"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ProcessedSuffix marks bibliography files that already carry
// reconciliation results.
const ProcessedSuffix = "-oa.bib"

var yearInName = regexp.MustCompile(`(19|20)\d{2}`)

// OutputPath returns the processed counterpart of an input .bib path.
func OutputPath(path string) string {
	return strings.TrimSuffix(path, ".bib") + ProcessedSuffix
}

// FindBibFiles walks root and returns bibliography files. With
// processed false it returns unprocessed `.bib` files (skipping
// `-oa.bib` outputs and anything under a `books/` directory); with
// processed true it returns only `-oa.bib` files. A root that is
// itself a file is returned as-is when it qualifies.
func FindBibFiles(root string, processed bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "books" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".bib") {
			return nil
		}
		isProcessed := strings.HasSuffix(path, ProcessedSuffix)
		if isProcessed == processed {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ExtractYearFromFilename returns the first plausible 4-digit year in
// a file's base name, or 0 when none is present.
func ExtractYearFromFilename(path string) int {
	m := yearInName.FindString(filepath.Base(path))
	if m == "" {
		return 0
	}
	year, _ := strconv.Atoi(m)
	return year
}

// SortBibFilesByYear orders files by the year embedded in their
// names, oldest first. Files without a year sort last; ties keep a
// deterministic name order.
func SortBibFilesByYear(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		yi, yj := yearKey(files[i]), yearKey(files[j])
		if yi != yj {
			return yi < yj
		}
		return files[i] < files[j]
	})
}

func yearKey(path string) int {
	if y := ExtractYearFromFilename(path); y != 0 {
		return y
	}
	return math.MaxInt
}
