// Package worker bridges the webhook queue to the reconciliation engine.
// Its only job is to normalize the raw payload and classify the outcome:
// not-actionable payloads are acknowledged, deterministic domain violations
// are parked for an operator, everything else is retried.
package worker

import (
	"context"

	"go.uber.org/zap"

	"kolo/internal/events"
	"kolo/internal/ledger"
	"kolo/internal/queue"
)

// Reconciler applies one canonical event.
type Reconciler interface {
	Process(ctx context.Context, evt events.CanonicalEvent) error
}

// Processor turns queued webhook jobs into reconciliation calls.
type Processor struct {
	registry *events.Registry
	engine   Reconciler
	logger   *zap.Logger
}

// NewProcessor creates a processor over the given registry and engine.
func NewProcessor(registry *events.Registry, engine Reconciler, logger *zap.Logger) *Processor {
	if registry == nil {
		panic("registry is required")
	}
	if engine == nil {
		panic("engine is required")
	}
	return &Processor{registry: registry, engine: engine, logger: logger}
}

// Handle processes one job. Retrying only makes sense for transient faults;
// a payload that deterministically violates a ledger invariant would fail the
// same way forever, so it is parked instead.
func (p *Processor) Handle(ctx context.Context, job queue.Job) queue.Outcome {
	evt, ok := p.registry.Normalize(job.Provider, job.Payload)
	if !ok {
		p.logger.Info("webhook not actionable",
			zap.String("job_id", job.ID),
			zap.String("provider", job.Provider))
		return queue.Done
	}

	if err := p.engine.Process(ctx, *evt); err != nil {
		if ledger.IsDomainInvariant(err) {
			p.logger.Error("webhook parked: ledger invariant violation",
				zap.String("job_id", job.ID),
				zap.String("provider", job.Provider),
				zap.String("kind", string(evt.Kind)),
				zap.String("external_ref", evt.ExternalReference),
				zap.Error(err))
			return queue.Park
		}
		p.logger.Warn("webhook processing failed, retrying",
			zap.String("job_id", job.ID),
			zap.String("provider", job.Provider),
			zap.Int("retries", job.Retries),
			zap.Error(err))
		return queue.Retry
	}

	return queue.Done
}
