// Package queue moves webhook processing off the request thread. It provides
// at-least-once delivery over RabbitMQ with a bounded retry count and a
// parked queue for jobs that exhaust retries or fail deterministically.
package queue

import (
	"context"
	"encoding/json"
	"time"
)

// Broker topology. One topic exchange carries all providers; the processing
// queue binds webhook.#, and the parked queue receives dead jobs directly.
const (
	Exchange      = "webhook_events"
	ProcessQueue  = "webhook_events.process"
	ParkedQueue   = "webhook_events.parked"
	routingPrefix = "webhook."
)

// Job is one webhook delivery awaiting processing.
type Job struct {
	ID         string          `json:"id"`
	Provider   string          `json:"provider"`
	Payload    json.RawMessage `json:"payload"`
	SourceIP   string          `json:"source_ip"`
	ReceivedAt time.Time       `json:"received_at"`
	Retries    int             `json:"retries"`
}

// Outcome classifies a handled job for the retry policy.
type Outcome int

const (
	// Done acknowledges the job: processed, or permanently not actionable.
	Done Outcome = iota
	// Retry re-enqueues the job until MaxRetries, then parks it.
	Retry
	// Park moves the job straight to the parked queue for manual inspection.
	Park
)

// Handler processes one job within the deadline of its context.
type Handler func(ctx context.Context, job Job) Outcome
