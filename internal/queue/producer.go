package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Producer publishes webhook jobs to the broker.
type Producer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewProducer dials the broker and declares the topology. A bounded dial
// timeout keeps startup from hanging on an unreachable broker.
func NewProducer(amqpURL string) (*Producer, error) {
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
	return &Producer{conn: conn, ch: ch}, nil
}

// Publish enqueues one job, routed by provider. Messages are persistent so a
// broker restart does not lose accepted webhooks.
func (p *Producer) Publish(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	err = p.ch.PublishWithContext(ctx,
		Exchange,
		routingPrefix+job.Provider,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Close shuts down the channel and connection.
func (p *Producer) Close() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(ProcessQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare process queue: %w", err)
	}
	if err := ch.QueueBind(ProcessQueue, routingPrefix+"#", Exchange, false, nil); err != nil {
		return fmt.Errorf("bind process queue: %w", err)
	}
	if _, err := ch.QueueDeclare(ParkedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare parked queue: %w", err)
	}
	return nil
}
