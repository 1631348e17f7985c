// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pdiddy/bibmatch/internal/bibtex"
	"github.com/pdiddy/bibmatch/pkg/types"
)

// FetchSummary aggregates the outcome of a metadata fetch run.
type FetchSummary struct {
	Fetched int
	Skipped int
	Missing int
	Failed  int
}

type fetchJob struct {
	workID string
	path   string
}

// FetchPath downloads full work metadata for every matched entry in
// the processed bibliographies under root, writing each record to
// <OutputDir>/<year-from-filename>/<work-id>.json. Existing files are
// kept unless cfg.Force is set. Downloads run on a bounded worker
// pool (default 8). Per-work failures are logged and counted; the
// returned error is non-nil only for setup failure or cancellation.
func (r *Runner) FetchPath(ctx context.Context, root string, cfg types.FetchConfig) (FetchSummary, error) {
	files, err := processedFiles(root)
	if err != nil {
		return FetchSummary{}, err
	}
	if len(files) == 0 {
		return FetchSummary{}, fmt.Errorf("no processed bibliographies under %s", root)
	}

	var summary FetchSummary
	jobs, err := r.collectFetchJobs(files, cfg, &summary)
	if err != nil {
		return summary, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan fetchJob)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				outcome := r.fetchOne(ctx, job)
				mu.Lock()
				switch outcome {
				case fetchOK:
					summary.Fetched++
				case fetchMissing:
					summary.Missing++
				case fetchFailed:
					summary.Failed++
				}
				mu.Unlock()
			}
		}()
	}

	for _, job := range jobs {
		select {
		case jobCh <- job:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobCh)
	wg.Wait()

	fmt.Fprintf(r.log(), "fetched %d works (%d skipped, %d missing, %d failed)\n",
		summary.Fetched, summary.Skipped, summary.Missing, summary.Failed)
	return summary, ctx.Err()
}

// collectFetchJobs walks the processed files and builds the download
// list, deduplicated by output path, counting already-present files
// as skipped.
func (r *Runner) collectFetchJobs(files []string, cfg types.FetchConfig, summary *FetchSummary) ([]fetchJob, error) {
	seen := make(map[string]bool)
	var jobs []fetchJob
	for _, file := range files {
		citations, err := bibtex.Load(file)
		if err != nil {
			fmt.Fprintf(r.log(), "error: %s: %v\n", file, err)
			summary.Failed++
			continue
		}

		yearDir := "unknown"
		if year := bibtex.ExtractYearFromFilename(file); year != 0 {
			yearDir = strconv.Itoa(year)
		}
		for _, citation := range citations {
			workID := citation.OpenAlexID()
			if workID == "" {
				continue
			}
			outPath := filepath.Join(cfg.OutputDir, yearDir, workID+".json")
			if seen[outPath] {
				continue
			}
			seen[outPath] = true
			if !cfg.Force {
				if _, err := os.Stat(outPath); err == nil {
					summary.Skipped++
					continue
				}
			}
			jobs = append(jobs, fetchJob{workID: workID, path: outPath})
		}
	}
	return jobs, nil
}

type fetchOutcome int

const (
	fetchOK fetchOutcome = iota
	fetchMissing
	fetchFailed
)

func (r *Runner) fetchOne(ctx context.Context, job fetchJob) fetchOutcome {
	raw, err := r.Catalog.FetchWork(ctx, job.workID)
	if err != nil {
		if ctx.Err() == nil {
			fmt.Fprintf(r.log(), "error: fetching %s: %v\n", job.workID, err)
		}
		return fetchFailed
	}
	if raw == nil {
		fmt.Fprintf(r.log(), "missing: %s not found in catalog\n", job.workID)
		return fetchMissing
	}

	if err := os.MkdirAll(filepath.Dir(job.path), 0o755); err != nil {
		fmt.Fprintf(r.log(), "error: %v\n", err)
		return fetchFailed
	}
	if err := os.WriteFile(job.path, raw, 0o644); err != nil {
		fmt.Fprintf(r.log(), "error: writing %s: %v\n", job.path, err)
		return fetchFailed
	}

	if r.Recorder != nil {
		if err := r.Recorder.RecordWork(ctx, candidateFromRaw(job.workID, raw), raw); err != nil {
			fmt.Fprintf(r.log(), "warning: audit record for %s failed: %v\n", job.workID, err)
		}
	}
	fmt.Fprintf(r.log(), "fetched: %s\n", job.workID)
	return fetchOK
}

// candidateFromRaw decodes the summary columns the audit store keeps
// from a raw work record.
func candidateFromRaw(workID string, raw json.RawMessage) types.Candidate {
	var record struct {
		ID              string `json:"id"`
		Title           string `json:"title"`
		PublicationYear int    `json:"publication_year"`
		Authorships     []struct {
			Author struct {
				DisplayName string `json:"display_name"`
			} `json:"author"`
		} `json:"authorships"`
	}
	cand := types.Candidate{ID: workID}
	if err := json.Unmarshal(raw, &record); err != nil {
		return cand
	}
	if record.ID != "" {
		cand.ID = record.ID
	}
	cand.Title = record.Title
	cand.PublicationYear = record.PublicationYear
	for _, a := range record.Authorships {
		if a.Author.DisplayName != "" {
			cand.Authors = append(cand.Authors, a.Author.DisplayName)
		}
	}
	return cand
}

// processedFiles returns root itself when it is a processed file,
// otherwise the "-oa.bib" files under it.
func processedFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	return bibtex.FindBibFiles(root, true)
}
