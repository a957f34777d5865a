package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer pulls webhook jobs off the process queue and runs them through a
// Handler, each worker completing one job before taking the next. Delivery is
// at-least-once: handlers must be safe to re-run.
type Consumer struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	maxRetries int
	jobTimeout time.Duration
	logger     *zap.Logger
}

// NewConsumer dials the broker and declares the topology.
func NewConsumer(amqpURL string, maxRetries int, jobTimeout time.Duration, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.DialConfig(amqpURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Consumer{
		conn:       conn,
		ch:         ch,
		maxRetries: maxRetries,
		jobTimeout: jobTimeout,
		logger:     logger,
	}, nil
}

// Start launches workers goroutines consuming the process queue and returns.
func (c *Consumer) Start(ctx context.Context, workers int, handler Handler) error {
	if workers < 1 {
		workers = 1
	}
	if err := c.ch.Qos(workers, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := c.ch.Consume(ProcessQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for i := 0; i < workers; i++ {
		go c.work(ctx, msgs, handler)
	}
	return nil
}

func (c *Consumer) work(ctx context.Context, msgs <-chan amqp.Delivery, handler Handler) {
	for d := range msgs {
		var job Job
		if err := json.Unmarshal(d.Body, &job); err != nil {
			// Undecodable jobs can never succeed; park the raw bytes.
			c.logger.Error("malformed job payload, parking", zap.Error(err))
			c.settle(d, d.Body, true)
			continue
		}

		jobCtx, cancel := context.WithTimeout(ctx, c.jobTimeout)
		outcome := handler(jobCtx, job)
		cancel()

		switch outcome {
		case Done:
			d.Ack(false)
		case Park:
			c.settle(d, d.Body, true)
		case Retry:
			job.Retries++
			if job.Retries >= c.maxRetries {
				c.logger.Error("retries exhausted, parking job",
					zap.String("job_id", job.ID),
					zap.String("provider", job.Provider),
					zap.Int("retries", job.Retries))
				c.settle(d, d.Body, true)
				continue
			}
			body, err := json.Marshal(job)
			if err != nil {
				c.logger.Error("re-marshal job failed, parking", zap.String("job_id", job.ID), zap.Error(err))
				c.settle(d, d.Body, true)
				continue
			}
			c.logger.Warn("job retry scheduled",
				zap.String("job_id", job.ID),
				zap.String("provider", job.Provider),
				zap.Int("retries", job.Retries))
			c.settle(d, body, false)
		}
	}
}

// settle republishes the job (to the parked queue or back through the
// exchange) and acks the original delivery. If the republish fails the
// original is nacked back onto the queue so the message is not lost.
func (c *Consumer) settle(d amqp.Delivery, body []byte, park bool) {
	exchange, key := Exchange, d.RoutingKey
	if park {
		// Default exchange routes directly to the parked queue.
		exchange, key = "", ParkedQueue
	}
	err := c.ch.PublishWithContext(context.Background(), exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		c.logger.Error("republish failed, requeueing delivery", zap.Error(err))
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}

// Close shuts down the channel and connection; in-flight workers drain as the
// delivery channel closes.
func (c *Consumer) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
