// Package pipeline runs the enrichment stages for one cadastral parcel.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mutafriches/internal/enrichment/audit"
	"mutafriches/internal/enrichment/enricher"
	"mutafriches/internal/enrichment/models"
	"mutafriches/internal/parcel"
	dErrors "mutafriches/pkg/domain-errors"
	"mutafriches/pkg/requestcontext"
)

// ErrMandatoryDataMissing is wrapped by every error Enrich returns.
var ErrMandatoryDataMissing = errors.New("mandatory data missing")

const tracerName = "mutafriches/enrichment"

// AuditRecorder receives one log per run. It must not block.
type AuditRecorder interface {
	Record(ctx context.Context, l audit.Log)
}

// Metrics is implemented by metrics.Metrics.
type Metrics interface {
	ObserveStage(stage string, d time.Duration)
	IncrementOutcome(status string)
}

// Stages are the optional enrichers, run in field order after the cadastre.
// Nil stages are left out.
type Stages struct {
	Energy            enricher.Enricher
	Transport         enricher.Enricher
	Urbanism          enricher.Enricher
	NaturalRisk       enricher.Enricher
	TechnologicalRisk enricher.Enricher
	GeoRisk           enricher.Enricher
	Zoning            enricher.Enricher
}

func (s Stages) ordered() []enricher.Enricher {
	all := []enricher.Enricher{
		s.Energy, s.Transport, s.Urbanism, s.NaturalRisk,
		s.TechnologicalRisk, s.GeoRisk, s.Zoning,
	}
	out := make([]enricher.Enricher, 0, len(all))
	for _, e := range all {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// StageOutcome is the provenance of one stage of a run.
type StageOutcome struct {
	Stage    string         `json:"stage"`
	Outcome  models.Outcome `json:"outcome"`
	Duration time.Duration  `json:"durationNs"`
}

// Result is a completed run. Parcel is owned by the caller.
type Result struct {
	Parcel     *parcel.Parcel    `json:"parcel"`
	Status     models.Status     `json:"status"`
	Provenance models.Provenance `json:"provenance"`
	Stages     []StageOutcome    `json:"stages"`
	Duration   time.Duration     `json:"durationNs"`
}

// Pipeline holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	cadastre enricher.Enricher
	optional []enricher.Enricher
	recorder AuditRecorder
	metrics  Metrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.logger = l } }

func WithAuditRecorder(r AuditRecorder) Option { return func(p *Pipeline) { p.recorder = r } }

func WithMetrics(m Metrics) Option { return func(p *Pipeline) { p.metrics = m } }

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option { return func(p *Pipeline) { p.tracer = t } }

func New(cadastre enricher.Enricher, stages Stages, opts ...Option) *Pipeline {
	p := &Pipeline{
		cadastre: cadastre,
		optional: stages.ordered(),
		tracer:   otel.Tracer(tracerName),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enrich validates identifier, runs every stage and folds their provenance.
// The only error is a dErrors.CodeMandatoryDataMissing wrapping
// ErrMandatoryDataMissing: invalid identifier or failed cadastre lookup.
// Optional stage failures are reported in the result instead.
func (p *Pipeline) Enrich(ctx context.Context, identifier string) (*Result, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "enrichment.pipeline",
		trace.WithAttributes(attribute.String("parcel.identifier", identifier)))
	defer span.End()

	id, err := parcel.NormalizeIdentifier(identifier)
	if err != nil {
		return nil, p.abort(ctx, span, identifier, start, nil, err, "invalid parcel identifier")
	}

	target := parcel.New(id)
	var stages []StageOutcome

	mandatory := p.runStage(ctx, p.cadastre, target)
	stages = append(stages, mandatory)
	if !mandatory.Outcome.Success {
		return nil, p.abort(ctx, span, id, start, stages,
			errors.New("cadastre lookup failed"), "cadastre data unavailable")
	}

	optional := make([]models.Outcome, 0, len(p.optional))
	for _, e := range p.optional {
		so := p.runStage(ctx, e, target)
		stages = append(stages, so)
		optional = append(optional, so.Outcome)
	}

	outcomes := append([]models.Outcome{mandatory.Outcome}, optional...)
	result := &Result{
		Parcel:     target,
		Status:     models.DeriveStatus(mandatory.Outcome, optional),
		Provenance: models.Merge(outcomes...),
		Stages:     stages,
		Duration:   time.Since(start),
	}

	span.SetAttributes(
		attribute.String("enrichment.status", string(result.Status)),
		attribute.Int("enrichment.sources_failed", len(result.Provenance.SourcesFailed)),
	)
	p.countOutcome(string(result.Status))
	p.record(ctx, audit.Log{
		Identifier:    id,
		Status:        string(result.Status),
		SourcesUsed:   result.Provenance.SourcesUsed,
		SourcesFailed: result.Provenance.SourcesFailed,
		MissingFields: result.Provenance.MissingFields,
		DurationMs:    result.Duration.Milliseconds(),
	})
	p.logger.InfoContext(ctx, "parcel enriched",
		"identifier", id,
		"status", result.Status,
		"sources_failed", len(result.Provenance.SourcesFailed),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (p *Pipeline) runStage(ctx context.Context, e enricher.Enricher, target *parcel.Parcel) StageOutcome {
	ctx, span := p.tracer.Start(ctx, "enrichment.stage."+e.Name())
	defer span.End()

	start := time.Now()
	out := e.Enrich(ctx, target)
	d := time.Since(start)

	span.SetAttributes(
		attribute.Bool("stage.success", out.Success),
		attribute.Bool("stage.skipped", out.Skipped),
		attribute.StringSlice("stage.sources_failed", out.SourcesFailed),
	)
	if len(out.SourcesFailed) > 0 {
		span.SetStatus(codes.Error, "source failure")
	}
	if p.metrics != nil {
		p.metrics.ObserveStage(e.Name(), d)
	}
	return StageOutcome{Stage: e.Name(), Outcome: out, Duration: d}
}

func (p *Pipeline) abort(ctx context.Context, span trace.Span, id string, start time.Time,
	stages []StageOutcome, cause error, msg string,
) error {
	var outcomes []models.Outcome
	for _, s := range stages {
		outcomes = append(outcomes, s.Outcome)
	}
	prov := models.Merge(outcomes...)

	span.RecordError(cause)
	span.SetStatus(codes.Error, msg)
	p.countOutcome(audit.StatusMandatoryMissing)
	p.record(ctx, audit.Log{
		Identifier:    id,
		Status:        audit.StatusMandatoryMissing,
		SourcesUsed:   prov.SourcesUsed,
		SourcesFailed: prov.SourcesFailed,
		MissingFields: prov.MissingFields,
		DurationMs:    time.Since(start).Milliseconds(),
		Error:         cause.Error(),
	})
	p.logger.WarnContext(ctx, "enrichment aborted",
		"identifier", id,
		"error", cause,
	)
	return dErrors.Wrap(fmt.Errorf("%w: %w", ErrMandatoryDataMissing, cause),
		dErrors.CodeMandatoryDataMissing, msg)
}

func (p *Pipeline) record(ctx context.Context, l audit.Log) {
	if p.recorder == nil {
		return
	}
	l.RequestID = requestcontext.RequestID(ctx)
	l.CreatedAt = requestcontext.Now(ctx)
	p.recorder.Record(ctx, l)
}

func (p *Pipeline) countOutcome(status string) {
	if p.metrics != nil {
		p.metrics.IncrementOutcome(status)
	}
}
