// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with requests
	// (e.g. "bibmatch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetrieverConfig holds settings for the OpenAlex candidate retriever.
type RetrieverConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is sent as the mailto parameter for polite pool access.
	// Empty means the common pool is used.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// MaxRetries bounds retry attempts on retryable HTTP statuses
	// (default 10).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// PerPage is the page size requested from the works endpoint
	// (default and maximum 50).
	PerPage int `json:"per_page" yaml:"per_page"`

	// CacheSize bounds the in-memory search cache; the oldest entry
	// is evicted when full (default 1000).
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// MaxConcurrentRequests bounds simultaneously in-flight API
	// requests across all workers (default 20).
	MaxConcurrentRequests int `json:"max_concurrent_requests" yaml:"max_concurrent_requests"`

	// RequestsPerSecond paces outgoing requests; 0 disables pacing.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// MatchConfig holds the decision engine's policy knobs.
type MatchConfig struct {
	// Interactive enables human confirmation for maybe-band matches.
	Interactive bool `json:"interactive" yaml:"interactive"`

	// Strict raises the acceptance thresholds from 85/60 to 90/70 to
	// trade recall for precision.
	Strict bool `json:"strict" yaml:"strict"`
}

// ProcessConfig holds settings for the process operation.
type ProcessConfig struct {
	MatchConfig `yaml:",inline"`

	// Force overwrites an existing "-oa.bib" output file.
	Force bool `json:"force" yaml:"force"`

	// Concurrent enables multi-file processing. Interactive prompts
	// are disabled while it is set.
	Concurrent bool `json:"concurrent" yaml:"concurrent"`

	// MaxFiles bounds files processed concurrently (default 4).
	MaxFiles int `json:"max_files" yaml:"max_files"`
}

// FetchConfig holds settings for the fetch operation.
type FetchConfig struct {
	// OutputDir is the directory receiving "<year>/<work-id>.json".
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Force re-downloads metadata that already exists on disk.
	Force bool `json:"force" yaml:"force"`

	// Workers bounds concurrent metadata downloads (default 8).
	Workers int `json:"workers" yaml:"workers"`
}
