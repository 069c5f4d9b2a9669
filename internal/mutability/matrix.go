package mutability

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"mutafriches/internal/parcel"
)

// AllowedScores is the closed set of raw scores a rule may assign.
var AllowedScores = []float64{-2, -1, -0.5, 0, 0.5, 1, 2}

const (
	MinWeight = 0.5
	MaxWeight = 2.0
)

// CriterionRule maps a parcel value to per-usage raw scores. It is either an
// EnumRule or a BucketRule; the set is closed.
type CriterionRule interface {
	evaluate(v parcel.Value) (Scores, bool)
	validate() error
}

// EnumRule scores categorical and boolean criteria by canonical key.
type EnumRule struct {
	scores map[string]Scores
}

// NewEnumRule copies the key table.
func NewEnumRule(scores map[string]Scores) EnumRule {
	return EnumRule{scores: maps.Clone(scores)}
}

// Keys returns the keys the rule recognises, sorted.
func (r EnumRule) Keys() []string {
	return slices.Sorted(maps.Keys(r.scores))
}

// Scores returns the scores of one key.
func (r EnumRule) Scores(key string) (Scores, bool) {
	s, ok := r.scores[key]
	return s, ok
}

func (r EnumRule) evaluate(v parcel.Value) (Scores, bool) {
	if v.Numeric {
		return Scores{}, false
	}
	return r.Scores(v.Key)
}

func (r EnumRule) validate() error {
	if len(r.scores) == 0 {
		return fmt.Errorf("enum rule has no keys")
	}
	for k, s := range r.scores {
		if err := validateScores(s); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
	}
	return nil
}

// Bucket applies to values strictly below Below.
type Bucket struct {
	Below  float64
	Label  string
	Scores Scores
}

// BucketRule scores measurable criteria by threshold. Buckets are checked in
// ascending order; the last one normally has Below = +Inf.
type BucketRule struct {
	buckets []Bucket
}

// NewBucketRule copies the buckets.
func NewBucketRule(buckets ...Bucket) BucketRule {
	return BucketRule{buckets: slices.Clone(buckets)}
}

// Buckets returns a copy of the thresholds.
func (r BucketRule) Buckets() []Bucket {
	return slices.Clone(r.buckets)
}

// Match returns the bucket containing x.
func (r BucketRule) Match(x float64) (Bucket, bool) {
	if math.IsNaN(x) {
		return Bucket{}, false
	}
	for _, b := range r.buckets {
		if x < b.Below {
			return b, true
		}
	}
	return Bucket{}, false
}

func (r BucketRule) evaluate(v parcel.Value) (Scores, bool) {
	if !v.Numeric {
		return Scores{}, false
	}
	b, ok := r.Match(v.Number)
	return b.Scores, ok
}

func (r BucketRule) validate() error {
	if len(r.buckets) == 0 {
		return fmt.Errorf("bucket rule has no buckets")
	}
	for i, b := range r.buckets {
		if i > 0 && b.Below <= r.buckets[i-1].Below {
			return fmt.Errorf("bucket %q: thresholds must increase", b.Label)
		}
		if err := validateScores(b.Scores); err != nil {
			return fmt.Errorf("bucket %q: %w", b.Label, err)
		}
	}
	return nil
}

func validateScores(s Scores) error {
	for i, x := range s {
		if !slices.Contains(AllowedScores, x) {
			return fmt.Errorf("usage %s: score %v not allowed", Usages[i], x)
		}
	}
	return nil
}

// Entry is the rule and fixed weight of one criterion.
type Entry struct {
	Weight float64
	Rule   CriterionRule
}

// Matrix is the read-only criteria-to-usage scoring table.
type Matrix struct {
	entries map[parcel.Criterion]Entry
}

// NewMatrix validates weights and scores and returns an immutable matrix.
func NewMatrix(entries map[parcel.Criterion]Entry) (*Matrix, error) {
	for c, e := range entries {
		if e.Weight < MinWeight || e.Weight > MaxWeight {
			return nil, fmt.Errorf("criterion %s: weight %v outside [%v, %v]", c, e.Weight, MinWeight, MaxWeight)
		}
		if e.Rule == nil {
			return nil, fmt.Errorf("criterion %s: missing rule", c)
		}
		if err := e.Rule.validate(); err != nil {
			return nil, fmt.Errorf("criterion %s: %w", c, err)
		}
	}
	return &Matrix{entries: maps.Clone(entries)}, nil
}

// Entry returns the entry of a criterion.
func (m *Matrix) Entry(c parcel.Criterion) (Entry, bool) {
	e, ok := m.entries[c]
	return e, ok
}

// Criteria lists the criteria present in the matrix, sorted.
func (m *Matrix) Criteria() []parcel.Criterion {
	return slices.Sorted(maps.Keys(m.entries))
}

// lookup returns the raw scores and weight of a known value. Criteria absent
// from the matrix, and keys or numbers no rule covers, are skipped.
func (m *Matrix) lookup(v parcel.Value) (Scores, float64, bool) {
	e, ok := m.entries[v.Criterion]
	if !ok {
		return Scores{}, 0, false
	}
	s, ok := e.Rule.evaluate(v)
	if !ok {
		return Scores{}, 0, false
	}
	return s, e.Weight, true
}
