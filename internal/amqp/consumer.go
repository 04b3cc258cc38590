package amqp

import (
	"context"
	"fmt"
	"log/slog"
)

// EventHandler processes one change event. A returned error requeues it.
type EventHandler func(ctx context.Context, ev ChangeEvent) error

type disposition int

const (
	ack disposition = iota
	requeue
	drop
)

// Consume binds queue to the exchange for every routing pattern and hands
// each decoded ChangeEvent to handler until ctx is done. Messages that do
// not decode are dropped.
func (c *Client) Consume(ctx context.Context, queue string, patterns []string, handler EventHandler) error {
	c.mu.Lock()
	if c.conn == nil || c.conn.IsClosed() {
		if err := c.connectLocked(ctx); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	ch, err := c.conn.Channel()
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("open consumer channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	for _, p := range patterns {
		if err := ch.QueueBind(q.Name, p, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue to %q: %w", p, err)
		}
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack (we want manual ack)
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming change events", "queue", q.Name, "patterns", patterns)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			switch deliver(ctx, delivery.Body, handler) {
			case ack:
				delivery.Ack(false)
			case requeue:
				delivery.Nack(false, true)
			case drop:
				delivery.Nack(false, false)
			}
		}
	}
}

func deliver(ctx context.Context, body []byte, handler EventHandler) disposition {
	ev, err := ChangeEventFromJSON(body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
		return drop
	}

	if err := handler(ctx, *ev); err != nil {
		slog.ErrorContext(ctx, "Failed to handle change event",
			"kind", ev.Kind,
			"id", ev.EntityID,
			"error", err)
		return requeue
	}

	slog.DebugContext(ctx, "Processed change event", "kind", ev.Kind, "id", ev.EntityID)
	return ack
}
