// Package publish validates publish requests, dispatches every (asset, provider)
// cell through the provider adapters and assembles the result ledger.
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/your-org/crosspost/internal/media"
	"github.com/your-org/crosspost/internal/provider"
	"github.com/your-org/crosspost/internal/target"
	"github.com/your-org/crosspost/pkg/tracing"
)

// Reporter forwards a finished publish downstream.
type Reporter interface {
	Report(ctx context.Context, report Report) error
}

// Params wires an Orchestrator.
type Params struct {
	Submitters []provider.Submitter
	Reporter   Reporter
	Limits     media.Limits
	// Timeout bounds dispatch of all cells; zero disables the bound.
	Timeout time.Duration
	// Concurrency is the number of cells in flight; values below 1 mean sequential.
	Concurrency   int
	ReportTimeout time.Duration
	Logger        *zap.Logger
}

// Orchestrator runs publish requests to completion.
type Orchestrator struct {
	submitters    map[target.Provider]provider.Submitter
	reporter      Reporter
	limits        media.Limits
	timeout       time.Duration
	concurrency   int
	reportTimeout time.Duration
	logger        *zap.Logger
	tracer        trace.Tracer
}

// Result is what a caller receives for any request that passed validation.
type Result struct {
	RequestID string          `json:"requestId"`
	Status    Status          `json:"status"`
	Ledger    []Outcome       `json:"ledger"`
	Notes     []string        `json:"notes,omitempty"`
	Dropped   []target.Target `json:"droppedTargets,omitempty"`
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(p Params) *Orchestrator {
	submitters := make(map[target.Provider]provider.Submitter, len(p.Submitters))
	for _, s := range p.Submitters {
		submitters[s.Provider()] = s
	}
	limits := p.Limits
	if limits == (media.Limits{}) {
		limits = media.DefaultLimits
	}
	concurrency := p.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	reportTimeout := p.ReportTimeout
	if reportTimeout <= 0 {
		reportTimeout = 30 * time.Second
	}
	logr := p.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	return &Orchestrator{
		submitters:    submitters,
		reporter:      p.Reporter,
		limits:        limits,
		timeout:       p.Timeout,
		concurrency:   concurrency,
		reportTimeout: reportTimeout,
		logger:        logr,
		tracer:        tracing.Tracer("publish"),
	}
}

// cell is one unit of dispatch work.
type cell struct {
	index     int
	asset     media.Asset
	submitter provider.Submitter
	provider  target.Provider
	sub       provider.Submission
	// preflight is a configuration error found before dispatch; the cell is then
	// recorded without calling the adapter.
	preflight error
}

// Publish validates req, dispatches every cell and reports the ledger downstream.
// Only a *ValidationError is returned as an error; adapter and reporting failures
// are ledger entries and notes.
func (o *Orchestrator) Publish(ctx context.Context, req Request) (*Result, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	ctx, span := o.tracer.Start(ctx, "publish",
		trace.WithAttributes(
			attribute.String("publish.request_id", req.ID),
			attribute.Int("publish.assets", len(req.Assets)),
			attribute.Int("publish.targets", len(req.Targets)),
		),
	)
	defer span.End()

	logr := o.logger.With(zap.String("request_id", req.ID))

	plan, err := Validate(req, o.limits)
	if err != nil {
		span.SetStatus(codes.Error, "validation failed")
		logr.Info("publish request rejected", zap.Error(err))
		return nil, err
	}
	for _, t := range plan.Dropped {
		logr.Info("target dropped for media type",
			zap.String("target", t.ID),
			zap.String("platform", string(t.Platform)),
			zap.String("category", string(plan.Category)),
		)
	}

	ledger := NewLedger()
	o.dispatch(ctx, logr, o.buildCells(logr, req, plan), ledger)

	entries := ledger.Entries()
	status := DeriveStatus(entries)
	span.SetAttributes(attribute.String("publish.status", string(status)))

	o.report(ctx, logr, req, plan, status, ledger)

	logr.Info("publish completed",
		zap.String("status", string(status)),
		zap.Int("outcomes", ledger.Len()),
	)

	return &Result{
		RequestID: req.ID,
		Status:    status,
		Ledger:    entries,
		Notes:     ledger.Notes(),
		Dropped:   plan.Dropped,
	}, nil
}

func (o *Orchestrator) buildCells(logr *zap.Logger, req Request, plan Plan) []cell {
	parts := target.Partition(plan.Targets)

	type lane struct {
		provider  target.Provider
		submitter provider.Submitter
		sub       provider.Submission
		preflight error
	}
	var lanes []lane
	for _, p := range target.Providers {
		targets := parts[p]
		if len(targets) == 0 {
			continue
		}
		l := lane{
			provider: p,
			sub: provider.Submission{
				RequestID:     req.ID,
				Targets:       targets,
				Category:      plan.Category,
				ScheduleMode:  plan.ScheduleMode,
				ScheduledAt:   req.ScheduledAt,
				BodyText:      req.BodyText,
				SecondaryText: req.SecondaryText,
			},
		}
		s, ok := o.submitters[p]
		switch {
		case !ok:
			l.preflight = &provider.ConfigError{Provider: p, Missing: []string{"adapter"}}
		default:
			l.submitter = s
			l.preflight = s.Configured()
		}
		if l.preflight != nil {
			logr.Error("provider not configured", zap.String("provider", string(p)), zap.Error(l.preflight))
		}
		lanes = append(lanes, l)
	}

	cells := make([]cell, 0, len(req.Assets)*len(lanes))
	for i, asset := range req.Assets {
		for _, l := range lanes {
			cells = append(cells, cell{
				index:     i,
				asset:     asset,
				submitter: l.submitter,
				provider:  l.provider,
				sub:       l.sub,
				preflight: l.preflight,
			})
		}
	}
	return cells
}

func (o *Orchestrator) dispatch(ctx context.Context, logr *zap.Logger, cells []cell, ledger *Ledger) {
	if len(cells) == 0 {
		return
	}
	dctx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for _, c := range cells {
		if c.preflight == nil && dctx.Err() != nil {
			o.record(logr, ledger, notStarted(c, dctx.Err()))
			continue
		}
		g.Go(func() error {
			o.runCell(dctx, logr, c, ledger)
			return nil
		})
	}
	_ = g.Wait()
}

func (o *Orchestrator) runCell(ctx context.Context, logr *zap.Logger, c cell, ledger *Ledger) {
	if c.preflight != nil {
		o.record(logr, ledger, failed(c, c.preflight, provider.Result{}, 0))
		return
	}
	if err := ctx.Err(); err != nil {
		o.record(logr, ledger, notStarted(c, err))
		return
	}

	cctx, span := o.tracer.Start(ctx, "publish.cell",
		trace.WithAttributes(
			attribute.String("publish.provider", string(c.provider)),
			attribute.Int("publish.asset_index", c.index),
			attribute.String("publish.asset_name", c.asset.Name),
		),
	)
	defer span.End()

	start := time.Now()
	res, err := o.submit(cctx, c)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		o.record(logr, ledger, failed(c, err, res, elapsed))
		return
	}

	body := res.Body
	o.record(logr, ledger, Outcome{
		AssetName:  c.asset.Name,
		AssetIndex: c.index,
		Provider:   c.provider,
		Success:    true,
		Payload:    &body,
		PublicURL:  res.PublicURL,
		DurationMS: elapsed.Milliseconds(),
	})
}

// submit isolates adapter panics so one cell cannot take down the request.
func (o *Orchestrator) submit(ctx context.Context, c cell) (res provider.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s adapter panicked: %v", c.provider, r)
		}
	}()
	return c.submitter.Submit(ctx, c.asset, c.sub)
}

func (o *Orchestrator) record(logr *zap.Logger, ledger *Ledger, out Outcome) {
	if err := ledger.Record(out); err != nil {
		logr.Error("duplicate outcome dropped", zap.Error(err))
		return
	}
	fields := []zap.Field{
		zap.String("provider", string(out.Provider)),
		zap.String("asset", out.AssetName),
		zap.Int64("duration_ms", out.DurationMS),
	}
	if out.PublicURL != "" {
		fields = append(fields, zap.String("public_url", out.PublicURL))
	}
	if out.Success {
		logr.Info("cell succeeded", fields...)
		return
	}
	fields = append(fields, zap.String("error_kind", string(out.ErrorKind)), zap.String("error", out.Error))
	logr.Warn("cell failed", fields...)
}

func failed(c cell, err error, res provider.Result, elapsed time.Duration) Outcome {
	return Outcome{
		AssetName:  c.asset.Name,
		AssetIndex: c.index,
		Provider:   c.provider,
		Error:      err.Error(),
		ErrorKind:  provider.Classify(err),
		PublicURL:  res.PublicURL,
		DurationMS: elapsed.Milliseconds(),
	}
}

func notStarted(c cell, cause error) Outcome {
	return failed(c, fmt.Errorf("cell not started before dispatch ended: %w", cause), provider.Result{}, 0)
}
