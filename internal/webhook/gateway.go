package webhook

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kolo/internal/models"
	"kolo/internal/queue"
)

// Records persists the append-only webhook audit trail.
type Records interface {
	Create(ctx context.Context, rec *models.WebhookRecord) error
}

// Publisher enqueues webhook jobs for asynchronous processing.
type Publisher interface {
	Publish(ctx context.Context, job queue.Job) error
}

// Deduper is a best-effort duplicate-delivery filter. Seen only checks; Mark
// records the key once the delivery is safely enqueued. Keeping the two apart
// matters: a key marked before a failed enqueue would swallow the provider's
// redelivery. It is an optimization only: the reconciliation engine stays
// correct without it.
type Deduper interface {
	Seen(ctx context.Context, key string) bool
	Mark(ctx context.Context, key string)
}

// Gateway terminates provider webhooks. Per delivery it verifies
// authenticity, persists an audit record, enqueues a processing job and
// responds immediately. No ledger mutation happens on the request thread.
type Gateway struct {
	verifiers map[string]Verifier
	records   Records
	dedupe    Deduper
	publisher Publisher
	logger    *zap.Logger
}

// NewGateway creates a gateway over the given collaborators. dedupe may be
// nil to disable the duplicate filter.
func NewGateway(verifiers map[string]Verifier, records Records, dedupe Deduper, publisher Publisher, logger *zap.Logger) *Gateway {
	if records == nil {
		panic("records store is required")
	}
	if publisher == nil {
		panic("publisher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		verifiers: verifiers,
		records:   records,
		dedupe:    dedupe,
		publisher: publisher,
		logger:    logger,
	}
}

// Handler returns the fiber handler for one provider's endpoint.
func (g *Gateway) Handler(provider string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ok := g.verifiers[provider]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "unknown provider"})
		}

		// fasthttp reuses the body buffer after the handler returns.
		body := append([]byte(nil), c.Body()...)
		header := func(name string) string { return c.Get(name) }

		record := &models.WebhookRecord{
			Provider:   provider,
			RawPayload: string(body),
			SourceIP:   c.IP(),
			ReceivedAt: time.Now().UTC(),
		}

		if err := v.Verify(c.Method(), header, body); err != nil {
			g.logger.Warn("webhook authentication failed",
				zap.String("provider", provider),
				zap.String("source_ip", c.IP()),
				zap.Error(err))
			record.HTTPStatus = fiber.StatusUnauthorized
			record.ResponsePayload = `{"status":"unauthorized"}`
			if err := g.records.Create(c.UserContext(), record); err != nil {
				g.logger.Error("audit rejected webhook", zap.String("provider", provider), zap.Error(err))
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "unauthorized"})
		}

		record.HTTPStatus = fiber.StatusOK
		record.ResponsePayload = `{"status":"ok"}`
		if err := g.records.Create(c.UserContext(), record); err != nil {
			// The audit row is the durability contract; without it we ask the
			// provider to redeliver.
			g.logger.Error("audit webhook", zap.String("provider", provider), zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "try again"})
		}

		dedupeKey := DedupeKey(provider, body)
		if g.dedupe != nil && g.dedupe.Seen(c.UserContext(), dedupeKey) {
			g.logger.Info("duplicate webhook delivery dropped",
				zap.String("provider", provider),
				zap.String("source_ip", c.IP()))
			return c.JSON(fiber.Map{"status": "ok"})
		}

		job := queue.Job{
			ID:         uuid.NewString(),
			Provider:   provider,
			Payload:    body,
			SourceIP:   c.IP(),
			ReceivedAt: record.ReceivedAt,
		}
		if err := g.publisher.Publish(c.UserContext(), job); err != nil {
			g.logger.Error("enqueue webhook job", zap.String("provider", provider), zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "try again"})
		}

		// Marked only after the job is durably enqueued, so a failed publish
		// never suppresses the provider's redelivery.
		if g.dedupe != nil {
			g.dedupe.Mark(c.UserContext(), dedupeKey)
		}

		return c.JSON(fiber.Map{"status": "ok"})
	}
}
