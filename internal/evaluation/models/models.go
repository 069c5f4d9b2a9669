// Package models holds the evaluation records persisted by the evaluation cache.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	"mutafriches/internal/mutability"
	"mutafriches/internal/parcel"
)

// Record is one scoring call. Records are append-only: a cache hit writes a
// new record pointing at the one it reused.
type Record struct {
	ID                 uuid.UUID                `json:"id"`
	Identifier         string                   `json:"identifier"`
	Parcel             parcel.Parcel            `json:"parcel"`
	Answers            parcel.UserAnswers       `json:"answers"`
	Results            []mutability.UsageResult `json:"results"`
	Reliability        mutability.Reliability   `json:"reliability"`
	SourceEvaluationID *uuid.UUID               `json:"sourceEvaluationId,omitempty"`
	CreatedAt          time.Time                `json:"createdAt"`
}

// AnswersKey is the lookup key of the record's answers.
func (r *Record) AnswersKey() string { return AnswersKey(r.Answers) }

// Clone copies r so the result shares no slices with it.
func (r *Record) Clone() *Record {
	out := *r
	out.Parcel = r.Parcel.Clone()
	out.Results = CloneResults(r.Results)
	if r.SourceEvaluationID != nil {
		id := *r.SourceEvaluationID
		out.SourceEvaluationID = &id
	}
	return &out
}

// CloneResults deep-copies usage results.
func CloneResults(in []mutability.UsageResult) []mutability.UsageResult {
	out := make([]mutability.UsageResult, len(in))
	for i, r := range in {
		r.Details = slices.Clone(r.Details)
		out[i] = r
	}
	return out
}

// AnswersKey hashes the canonical JSON form of a. Equal answers always share
// a key.
func AnswersKey(a parcel.UserAnswers) string {
	raw, _ := json.Marshal(a)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Evaluation is what a scoring call returns.
type Evaluation struct {
	ID                 uuid.UUID                `json:"id"`
	Identifier         string                   `json:"identifier"`
	Results            []mutability.UsageResult `json:"results"`
	Reliability        mutability.Reliability   `json:"reliability"`
	SourceEvaluationID *uuid.UUID               `json:"sourceEvaluationId,omitempty"`
	FromCache          bool                     `json:"fromCache"`
	CreatedAt          time.Time                `json:"createdAt"`
}

// NewEvaluation projects a record.
func NewEvaluation(r *Record) *Evaluation {
	return &Evaluation{
		ID:                 r.ID,
		Identifier:         r.Identifier,
		Results:            CloneResults(r.Results),
		Reliability:        r.Reliability,
		SourceEvaluationID: r.SourceEvaluationID,
		FromCache:          r.SourceEvaluationID != nil,
		CreatedAt:          r.CreatedAt,
	}
}
