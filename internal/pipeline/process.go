// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates bibliography reconciliation: finding
// .bib files, resolving exact DOIs in batches, running the fuzzy
// decision engine over the remainder, and writing "-oa.bib" outputs.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pdiddy/bibmatch/internal/bibtex"
	"github.com/pdiddy/bibmatch/internal/match"
	"github.com/pdiddy/bibmatch/pkg/types"
)

// Catalog is the remote surface the pipeline depends on. Implemented
// by openalex.Client; faked in tests.
type Catalog interface {
	match.Retriever
	ResolveDOIs(ctx context.Context, dois []string) ([]string, error)
	FetchWork(ctx context.Context, workID string) (json.RawMessage, error)
}

// Recorder receives audit rows. Implemented by store.Store; a nil
// Recorder disables auditing.
type Recorder interface {
	RecordDecision(ctx context.Context, bibFile, citationKey string, d types.Decision) error
	RecordWork(ctx context.Context, cand types.Candidate, raw json.RawMessage) error
}

// Runner holds the collaborators shared by all pipeline operations.
type Runner struct {
	Catalog   Catalog
	Confirmer match.Confirmer
	Recorder  Recorder

	// Log receives progress lines. Nil discards them. Writes are
	// serialized, so any writer is safe under concurrent processing.
	Log io.Writer

	logOnce sync.Once
	logW    io.Writer
}

// FileResult summarizes processing of one bibliography file.
type FileResult struct {
	Path      string
	Skipped   bool
	Total     int
	Matched   int
	ViaDOI    int
	Unmatched int
}

// Summary aggregates FileResults over a run.
type Summary struct {
	Files     int
	Skipped   int
	Failed    int
	Matched   int
	ViaDOI    int
	Unmatched int
}

func (s *Summary) add(r FileResult) {
	s.Files++
	if r.Skipped {
		s.Skipped++
		return
	}
	s.Matched += r.Matched
	s.ViaDOI += r.ViaDOI
	s.Unmatched += r.Unmatched
}

// ProcessPath reconciles one .bib file or every unprocessed .bib file
// under a directory, oldest first by the year in the file name. With
// cfg.Concurrent, up to cfg.MaxFiles files run in parallel and
// interactive confirmation is disabled. Per-file failures are logged
// and counted, never fatal; the returned error is non-nil only for
// cancellation or when no input files exist.
func (r *Runner) ProcessPath(ctx context.Context, root string, cfg types.ProcessConfig) (Summary, error) {
	files, err := inputFiles(root)
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		return Summary{}, fmt.Errorf("no bibliography files under %s", root)
	}
	bibtex.SortBibFilesByYear(files)

	if cfg.Concurrent && len(files) > 1 {
		return r.processConcurrent(ctx, files, cfg)
	}

	var summary Summary
	for _, file := range files {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		result, err := r.ProcessFile(ctx, file, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return summary, err
			}
			fmt.Fprintf(r.log(), "error: %s: %v\n", file, err)
			summary.Files++
			summary.Failed++
			continue
		}
		summary.add(result)
	}
	return summary, nil
}

// processConcurrent fans files out to a bounded worker pool. Each
// worker owns whole files, so citations are never shared across
// goroutines.
func (r *Runner) processConcurrent(ctx context.Context, files []string, cfg types.ProcessConfig) (Summary, error) {
	if cfg.Interactive {
		fmt.Fprintln(r.log(), "interactive confirmation disabled for concurrent processing")
	}
	cfg.Interactive = false

	workers := cfg.MaxFiles
	if workers <= 0 {
		workers = 4
	}
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan string)
	var (
		mu      sync.Mutex
		summary Summary
		wg      sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				result, err := r.ProcessFile(ctx, file, cfg)
				mu.Lock()
				if err != nil {
					if ctx.Err() == nil {
						fmt.Fprintf(r.log(), "error: %s: %v\n", file, err)
					}
					summary.Files++
					summary.Failed++
				} else {
					summary.add(result)
				}
				mu.Unlock()
			}
		}()
	}

	for _, file := range files {
		select {
		case jobs <- file:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	return summary, ctx.Err()
}

// ProcessFile reconciles one bibliography file. Entries carrying a DOI
// are resolved in batches first; the remainder go through the fuzzy
// engine. The "-oa.bib" output is written only after every entry has
// finished, so a cancelled run leaves no partial output.
func (r *Runner) ProcessFile(ctx context.Context, path string, cfg types.ProcessConfig) (FileResult, error) {
	result := FileResult{Path: path}

	outPath := bibtex.OutputPath(path)
	if !cfg.Force {
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(r.log(), "skipped: %s (output exists)\n", path)
			result.Skipped = true
			return result, nil
		}
	}

	citations, err := bibtex.Load(path)
	if err != nil {
		return result, err
	}
	result.Total = len(citations)

	viaDOI, err := r.resolveExactDOIs(ctx, path, citations)
	if err != nil {
		return result, err
	}
	result.ViaDOI = len(viaDOI)

	engine := &match.Engine{
		Retriever: r.Catalog,
		Confirmer: r.Confirmer,
		Config:    cfg.MatchConfig,
		Log:       r.log(),
	}
	for i, citation := range citations {
		if viaDOI[i] {
			continue
		}
		decision, err := engine.Match(ctx, citation)
		if err != nil {
			return result, err
		}
		r.record(ctx, path, citation.Key, decision)
	}

	for _, citation := range citations {
		if citation.Matched() {
			result.Matched++
		} else {
			result.Unmatched++
		}
	}

	if err := bibtex.Save(outPath, citations); err != nil {
		return result, err
	}
	fmt.Fprintf(r.log(), "processed: %s (%d matched, %d unmatched)\n",
		path, result.Matched, result.Unmatched)
	return result, nil
}

// resolveExactDOIs runs the batch DOI lookup for every unmatched
// DOI-bearing entry and attaches the resolved work IDs. It returns the
// set of citation indices settled here so the fuzzy pass skips them.
func (r *Runner) resolveExactDOIs(ctx context.Context, path string, citations []*types.Citation) (map[int]bool, error) {
	var (
		indices []int
		dois    []string
	)
	for i, citation := range citations {
		if citation.Matched() {
			continue
		}
		if doi := strings.TrimSpace(citation.DOI()); doi != "" {
			indices = append(indices, i)
			dois = append(dois, doi)
		}
	}
	settled := make(map[int]bool)
	if len(dois) == 0 {
		return settled, nil
	}

	ids, err := r.Catalog.ResolveDOIs(ctx, dois)
	if err != nil {
		return settled, err
	}
	for n, idx := range indices {
		if ids[n] == "" {
			continue
		}
		citation := citations[idx]
		citation.Set(types.FieldOpenAlex, ids[n])
		settled[idx] = true
		fmt.Fprintf(r.log(), "[doi]   %s => %s\n", citation.Key, ids[n])
		r.record(ctx, path, citation.Key, types.Decision{
			Outcome: types.OutcomeAutoAccepted,
			WorkID:  ids[n],
			Score:   100,
		})
	}
	return settled, nil
}

func (r *Runner) record(ctx context.Context, bibFile, key string, d types.Decision) {
	if r.Recorder == nil {
		return
	}
	if err := r.Recorder.RecordDecision(ctx, bibFile, key, d); err != nil {
		fmt.Fprintf(r.log(), "warning: audit record for %q failed: %v\n", key, err)
	}
}

// inputFiles returns root itself when it is a .bib file, otherwise the
// unprocessed .bib files under it.
func inputFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !strings.HasSuffix(root, ".bib") || strings.HasSuffix(root, bibtex.ProcessedSuffix) {
			return nil, fmt.Errorf("%s is not an unprocessed .bib file", root)
		}
		return []string{root}, nil
	}
	return bibtex.FindBibFiles(root, false)
}

func (r *Runner) log() io.Writer {
	r.logOnce.Do(func() {
		if r.Log == nil {
			r.logW = io.Discard
			return
		}
		r.logW = &syncWriter{w: r.Log}
	})
	return r.logW
}

// syncWriter serializes writes from concurrent workers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
