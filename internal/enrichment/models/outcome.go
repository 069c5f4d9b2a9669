// Package models holds the provenance values exchanged between enrichers and
// the pipeline.
package models

import (
	"slices"

	"mutafriches/pkg/platform/strings"
)

// Outcome is the provenance of one enrichment stage. Values are built by
// OutcomeBuilder or Skipped and are not modified afterwards.
type Outcome struct {
	Success       bool     `json:"success"`
	Skipped       bool     `json:"skipped,omitempty"`
	SourcesUsed   []string `json:"sourcesUsed"`
	SourcesFailed []string `json:"sourcesFailed"`
	MissingFields []string `json:"missingFields"`
}

// Skipped records a stage that did not run because a prerequisite was absent.
// Its fields are reported missing but no source is marked failed.
func Skipped(fields ...string) Outcome {
	return Outcome{
		Skipped:       true,
		SourcesUsed:   []string{},
		SourcesFailed: []string{},
		MissingFields: strings.Union(fields),
	}
}

// OutcomeBuilder accumulates provenance while an enricher applies its results.
// It is not safe for concurrent use; enrichers fill it after joining their
// concurrent fetches.
type OutcomeBuilder struct {
	used    []string
	failed  []string
	missing []string
}

// Used records a source that returned data.
func (b *OutcomeBuilder) Used(source string) *OutcomeBuilder {
	b.used = append(b.used, source)
	return b
}

// Failed records a failed source and the fields it would have filled.
func (b *OutcomeBuilder) Failed(source string, fields ...string) *OutcomeBuilder {
	b.failed = append(b.failed, source)
	b.missing = append(b.missing, fields...)
	return b
}

// Missing records fields left empty without a source failure.
func (b *OutcomeBuilder) Missing(fields ...string) *OutcomeBuilder {
	b.missing = append(b.missing, fields...)
	return b
}

// Build returns the outcome. A stage succeeds when at least one source was used.
func (b *OutcomeBuilder) Build() Outcome {
	used := strings.Union(b.used)
	return Outcome{
		Success:       len(used) > 0,
		SourcesUsed:   used,
		SourcesFailed: strings.Union(b.failed),
		MissingFields: strings.Union(b.missing),
	}
}

// Provenance is the folded provenance of a whole pipeline run.
type Provenance struct {
	SourcesUsed   []string `json:"sourcesUsed"`
	SourcesFailed []string `json:"sourcesFailed"`
	MissingFields []string `json:"missingFields"`
}

// Merge concatenates the lists of every outcome in order, without duplicates.
func Merge(outcomes ...Outcome) Provenance {
	var used, failed, missing [][]string
	for _, o := range outcomes {
		used = append(used, o.SourcesUsed)
		failed = append(failed, o.SourcesFailed)
		missing = append(missing, o.MissingFields)
	}
	return Provenance{
		SourcesUsed:   strings.Union(used...),
		SourcesFailed: strings.Union(failed...),
		MissingFields: strings.Union(missing...),
	}
}

// Clone returns a copy sharing no slices with p.
func (p Provenance) Clone() Provenance {
	return Provenance{
		SourcesUsed:   slices.Clone(p.SourcesUsed),
		SourcesFailed: slices.Clone(p.SourcesFailed),
		MissingFields: slices.Clone(p.MissingFields),
	}
}
