// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pdiddy/bibmatch/internal/bibtex"
	"github.com/pdiddy/bibmatch/pkg/types"
)

// fakeCatalog serves canned candidates and DOI resolutions while
// recording every call.
type fakeCatalog struct {
	mu          sync.Mutex
	searchCalls []string
	doiBatches  [][]string
	candidates  map[string][]types.Candidate
	doiMap      map[string]string
	works       map[string]json.RawMessage
}

func (f *fakeCatalog) CandidatesForEntry(ctx context.Context, title, last, year string) ([]types.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, title)
	f.mu.Unlock()
	return f.candidates[title], nil
}

func (f *fakeCatalog) ResolveDOIs(ctx context.Context, dois []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.doiBatches = append(f.doiBatches, dois)
	f.mu.Unlock()
	resolved := make([]string, len(dois))
	for i, doi := range dois {
		resolved[i] = f.doiMap[strings.ToLower(doi)]
	}
	return resolved, nil
}

func (f *fakeCatalog) FetchWork(ctx context.Context, workID string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.works[workID], nil
}

func (f *fakeCatalog) searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searchCalls...)
}

func writeBib(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const testBib = `@article{doi2020paper,
  title = {Resolved By Identifier},
  doi = {10.1000/known},
  year = {2020},
}
@article{fuzzy2020paper,
  title = {Deep Learning For Ants},
  author = {John Smith},
  year = {2020},
}
@article{lost2020paper,
  title = {Nobody Indexed This},
  year = {2020},
}
`

func newTestRunner() (*Runner, *fakeCatalog, *bytes.Buffer) {
	catalog := &fakeCatalog{
		candidates: map[string][]types.Candidate{
			"Deep Learning For Ants": {{
				ID:              "https://openalex.org/W2",
				Title:           "Deep Learning For Ants",
				PublicationYear: 2020,
				Authors:         []string{"John Smith"},
			}},
		},
		doiMap: map[string]string{"10.1000/known": "W1"},
	}
	var log bytes.Buffer
	return &Runner{Catalog: catalog, Log: &log}, catalog, &log
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs2020.bib")
	writeBib(t, path, testBib)

	runner, catalog, _ := newTestRunner()
	result, err := runner.ProcessFile(context.Background(), path, types.ProcessConfig{})
	if err != nil {
		t.Fatal(err)
	}

	if result.Total != 3 || result.Matched != 2 || result.Unmatched != 1 || result.ViaDOI != 1 {
		t.Errorf("result = %+v", result)
	}

	// The DOI-settled entry must not reach the fuzzy engine.
	for _, title := range catalog.searches() {
		if title == "Resolved By Identifier" {
			t.Error("DOI-settled entry was searched")
		}
	}

	out, err := bibtex.Load(filepath.Join(dir, "refs2020-oa.bib"))
	if err != nil {
		t.Fatal(err)
	}
	byKey := map[string]string{}
	for _, c := range out {
		byKey[c.Key] = c.OpenAlexID()
	}
	if byKey["doi2020paper"] != "W1" {
		t.Errorf("DOI entry ID = %q, want W1", byKey["doi2020paper"])
	}
	if byKey["fuzzy2020paper"] != "W2" {
		t.Errorf("fuzzy entry ID = %q, want W2", byKey["fuzzy2020paper"])
	}
	if byKey["lost2020paper"] != "" {
		t.Errorf("unmatched entry got ID %q", byKey["lost2020paper"])
	}
}

func TestProcessFileSkipsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs2020.bib")
	writeBib(t, path, testBib)
	writeBib(t, filepath.Join(dir, "refs2020-oa.bib"), "@misc{old, title = {Old}}\n")

	runner, catalog, _ := newTestRunner()
	result, err := runner.ProcessFile(context.Background(), path, types.ProcessConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Skipped {
		t.Error("existing output not skipped")
	}
	if len(catalog.searches()) != 0 || len(catalog.doiBatches) != 0 {
		t.Error("skipped file still triggered catalog calls")
	}

	// Force reprocesses and overwrites.
	result, err = runner.ProcessFile(context.Background(), path, types.ProcessConfig{Force: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped || result.Total != 3 {
		t.Errorf("forced run = %+v", result)
	}
}

func TestProcessFileIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs2020.bib")
	writeBib(t, path, `@article{done, title = {Already Matched}, openalex = {W9}}`+"\n")

	runner, catalog, _ := newTestRunner()
	result, err := runner.ProcessFile(context.Background(), path, types.ProcessConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Matched != 1 {
		t.Errorf("result = %+v", result)
	}
	if len(catalog.searches()) != 0 {
		t.Error("already-matched entry triggered retrieval")
	}

	out, err := bibtex.Load(filepath.Join(dir, "refs2020-oa.bib"))
	if err != nil {
		t.Fatal(err)
	}
	if out[0].OpenAlexID() != "W9" {
		t.Errorf("existing ID changed to %q", out[0].OpenAlexID())
	}
}

func TestProcessPathConcurrent(t *testing.T) {
	dir := t.TempDir()
	writeBib(t, filepath.Join(dir, "a2019.bib"), testBib)
	writeBib(t, filepath.Join(dir, "b2021.bib"), testBib)
	writeBib(t, filepath.Join(dir, "books", "ignored2020.bib"), testBib)

	runner, _, log := newTestRunner()
	cfg := types.ProcessConfig{
		MatchConfig: types.MatchConfig{Interactive: true},
		Concurrent:  true,
		MaxFiles:    2,
	}
	summary, err := runner.ProcessPath(context.Background(), dir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Files != 2 || summary.Matched != 4 || summary.Unmatched != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if !strings.Contains(log.String(), "interactive confirmation disabled") {
		t.Error("missing notice about disabled interactive mode")
	}
	for _, name := range []string{"a2019-oa.bib", "b2021-oa.bib"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("output %s not written: %v", name, err)
		}
	}
}

func TestProcessPathCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs2020.bib")
	writeBib(t, path, testBib)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner, _, _ := newTestRunner()
	_, err := runner.ProcessPath(ctx, dir, types.ProcessConfig{})
	if err == nil {
		t.Fatal("cancelled run returned nil error")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "refs2020-oa.bib")); statErr == nil {
		t.Error("cancelled run wrote an output file")
	}
}

func TestProcessPathNoFiles(t *testing.T) {
	runner, _, _ := newTestRunner()
	if _, err := runner.ProcessPath(context.Background(), t.TempDir(), types.ProcessConfig{}); err == nil {
		t.Error("empty directory should be an error")
	}
}

// recordingStore captures audit rows in memory.
type recordingStore struct {
	mu        sync.Mutex
	decisions map[string]types.Decision
	works     []string
}

func (r *recordingStore) RecordDecision(_ context.Context, _, key string, d types.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.decisions == nil {
		r.decisions = map[string]types.Decision{}
	}
	r.decisions[key] = d
	return nil
}

func (r *recordingStore) RecordWork(_ context.Context, cand types.Candidate, _ json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.works = append(r.works, cand.ShortID())
	return nil
}

func TestProcessFileRecordsDecisions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs2020.bib")
	writeBib(t, path, testBib)

	runner, _, _ := newTestRunner()
	rec := &recordingStore{}
	runner.Recorder = rec

	if _, err := runner.ProcessFile(context.Background(), path, types.ProcessConfig{}); err != nil {
		t.Fatal(err)
	}
	if d := rec.decisions["doi2020paper"]; d.WorkID != "W1" || d.Score != 100 {
		t.Errorf("DOI decision = %+v", d)
	}
	if d := rec.decisions["fuzzy2020paper"]; d.Outcome != types.OutcomeAutoAccepted || d.WorkID != "W2" {
		t.Errorf("fuzzy decision = %+v", d)
	}
	if d := rec.decisions["lost2020paper"]; d.Outcome != types.OutcomeNoMatch {
		t.Errorf("unmatched decision = %+v", d)
	}
}
