// Package report compiles the user-visible outcome of one migration run.
package report

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"legacymig/pkg/engine"
)

// Stage names.
const (
	StageExtract   = "extract"
	StageTransform = "transform"
)

// DocumentFailure is a document whose processing was abandoned.
type DocumentFailure struct {
	Document string `json:"document"`
	Error    string `json:"error"`
}

// DocumentSkip is a document that was not processed at all.
type DocumentSkip struct {
	Document string `json:"document"`
	Size     int64  `json:"size"`
	Reason   string `json:"reason"`
}

// Summary is the report of one extract or transform run.
type Summary struct {
	RunID      string    `json:"run_id"`
	Stage      string    `json:"stage"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Counts map[string]int `json:"counts"`

	DocumentsProcessed int               `json:"documents_processed"`
	Skipped            []DocumentSkip    `json:"skipped"`
	Failures           []DocumentFailure `json:"failures"`
	Interrupted        bool              `json:"interrupted"`

	Duplicates  int                           `json:"duplicates"`
	Warnings    int                           `json:"warnings"`
	Unresolved  map[string]int                `json:"unresolved"`
	NearMisses  []engine.NearMiss             `json:"near_misses"`
	LookupStats map[string]engine.LookupStats `json:"lookup_stats,omitempty"`
}

// NewSummary starts a summary for runID.
func NewSummary(runID, stage string) *Summary {
	return &Summary{
		RunID:      runID,
		Stage:      stage,
		StartedAt:  time.Now().UTC(),
		Counts:     make(map[string]int),
		Skipped:    make([]DocumentSkip, 0),
		Failures:   make([]DocumentFailure, 0),
		Unresolved: make(map[string]int),
		NearMisses: make([]engine.NearMiss, 0),
	}
}

// SetCount records the number of records produced for kind.
func (s *Summary) SetCount(kind string, n int) {
	s.Counts[kind] = n
}

// RecordFailure adds a failed document.
func (s *Summary) RecordFailure(document string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	s.Failures = append(s.Failures, DocumentFailure{Document: document, Error: msg})
}

// RecordSkip adds a skipped document.
func (s *Summary) RecordSkip(document string, size int64, reason string) {
	s.Skipped = append(s.Skipped, DocumentSkip{Document: document, Size: size, Reason: reason})
}

// AddUnresolved counts unresolved references per kind.
func (s *Summary) AddUnresolved(refs []engine.UnresolvedRef) {
	for _, r := range refs {
		s.Unresolved[r.Kind]++
	}
}

// HasFailures reports whether any document failed.
func (s *Summary) HasFailures() bool {
	return len(s.Failures) > 0
}

// Finish stamps the end time.
func (s *Summary) Finish() {
	s.FinishedAt = time.Now().UTC()
}

// Log emits the summary as one info event plus one warning per failure.
func (s *Summary) Log(log zerolog.Logger) {
	counts := zerolog.Dict()
	for _, k := range sortedKeys(s.Counts) {
		counts = counts.Int(k, s.Counts[k])
	}
	unresolved := zerolog.Dict()
	for _, k := range sortedKeys(s.Unresolved) {
		unresolved = unresolved.Int(k, s.Unresolved[k])
	}

	for _, f := range s.Failures {
		log.Warn().
			Str("run_id", s.RunID).
			Str("document", f.Document).
			Str("error", f.Error).
			Msg("document failed")
	}
	for _, nm := range s.NearMisses {
		log.Warn().
			Str("run_id", s.RunID).
			Str("old_id", nm.OldID).
			Str("name", nm.Name).
			Str("closest", nm.Closest).
			Float64("score", nm.Score).
			Msg("branch name resembles a canonical branch")
	}

	log.Info().
		Str("run_id", s.RunID).
		Str("stage", s.Stage).
		Dict("counts", counts).
		Int("documents_processed", s.DocumentsProcessed).
		Int("documents_skipped", len(s.Skipped)).
		Int("documents_failed", len(s.Failures)).
		Int("duplicates", s.Duplicates).
		Int("warnings", s.Warnings).
		Dict("unresolved", unresolved).
		Bool("interrupted", s.Interrupted).
		Dur("elapsed", s.FinishedAt.Sub(s.StartedAt)).
		Msg("run complete")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
