// Package bus is the CDC bus adapter: a github.com/nats-io/nats.go
// JetStream consumer that feeds the projection pipeline. Each configured
// topic is consumed by its own goroutine, which pulls up to ten messages
// per fetch and applies them one at a time, in order, through
// pipeline.Handler, acking only on success; there is no intermediate
// persistence between receipt and apply.
package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/theleeeo/dictionary-indexer/internal/pipeline"
)

// subjectPrefix namespaces every CDC subject so the stream filter doesn't
// collide with unrelated JetStream traffic on a shared NATS deployment.
const subjectPrefix = "dictionary.cdc."

// streamName is the durable JetStream stream every topic subject is
// captured under.
const streamName = "DICTIONARY_CDC"

// eventTypeHeader carries the CDC event type (new/update/delete).
// Kafka producers put it in the message key; here the subject already
// encodes the topic, so the event type rides in a header.
const eventTypeHeader = "Cdc-Event-Type"

// Subject returns the JetStream subject a given recognized topic is
// published under.
func Subject(topic string) string { return subjectPrefix + topic }

// Consumer applies each message directly through a pipeline.Handler and
// acks only once that apply succeeds, so a crash between receipt and
// ack replays from NATS rather than losing or double-committing a
// message (at-least-once). A decode failure, an unrecognized topic, or
// a store failure all nak the message, so JetStream redelivers it; no
// retry bookkeeping is kept here.
type Consumer struct {
	js         nats.JetStreamContext
	handle     pipeline.Handler
	group      string
	topics     []string
	logger     *zap.Logger
	resubAfter time.Duration
}

func NewConsumer(js nats.JetStreamContext, handle pipeline.Handler, group string, topics []string, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{js: js, handle: handle, group: group, topics: topics, logger: logger, resubAfter: 5 * time.Second}
}

// ProvisionStream creates the CDC stream with every configured topic's
// subject when no stream of that name exists. An existing stream is left
// as it is; its subject list is not updated.
func (c *Consumer) ProvisionStream(ctx context.Context) error {
	subjects := make([]string, 0, len(c.topics))
	for _, t := range c.topics {
		subjects = append(subjects, Subject(t))
	}

	if _, err := c.js.StreamInfo(streamName); err == nil {
		return nil
	} else if err != nats.ErrStreamNotFound {
		return fmt.Errorf("bus: stream info: %w", err)
	}

	_, err := c.js.AddStream(&nats.StreamConfig{
		Name:      streamName,
		Subjects:  subjects,
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		// A full window document with all its tabs and fields can be
		// enormous; tolerate payloads up to 1 GiB.
		MaxMsgSize: 1 << 30,
	})
	if err != nil {
		return fmt.Errorf("bus: create stream: %w", err)
	}
	return nil
}

// Run subscribes to every configured topic and blocks until ctx is done.
// Each topic gets its own durable pull consumer so ordering is preserved
// per topic (per-subject FIFO) while topics progress independently.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ProvisionStream(ctx); err != nil {
		return err
	}

	errCh := make(chan error, len(c.topics))
	for _, topic := range c.topics {
		t := topic
		go func() {
			errCh <- c.consumeTopic(ctx, t)
		}()
	}

	for range c.topics {
		if err := <-errCh; err != nil && ctx.Err() == nil {
			return err
		}
	}
	return ctx.Err()
}

func (c *Consumer) consumeTopic(ctx context.Context, topic string) error {
	subject := Subject(topic)
	durable := c.group + "-" + topic

	var sub *nats.Subscription
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var err error
		sub, err = c.js.PullSubscribe(subject, durable, nats.ManualAck(), nats.AckExplicit())
		if err == nil {
			break
		}
		c.logger.Warn("can't subscribe to topic, retrying", zap.String("topic", topic), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.resubAfter):
		}
	}

	c.logger.Info("subscribed to topic", zap.String("topic", topic), zap.String("subject", subject))

	for {
		if ctx.Err() != nil {
			return nil
		}
		msgs, err := sub.Fetch(10, nats.Context(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			continue // timeout waiting for messages; poll again
		}
		for _, msg := range msgs {
			c.process(ctx, topic, msg)
		}
	}
}

// process handles one message: extract the event type, hand the topic
// and payload to the pipeline handler for decode + apply, and ack only
// if that succeeds. A missing event type, an apply error, or an
// unrecognized topic all fall through to the same outcome: logged and
// nak'd for redelivery.
func (c *Consumer) process(ctx context.Context, topic string, msg *nats.Msg) {
	eventType := msg.Header.Get(eventTypeHeader)
	if eventType == "" {
		c.logger.Warn("message missing event type header, skipping without acking", zap.String("topic", topic))
		_ = msg.Nak()
		return
	}

	if err := c.handle(ctx, topic, eventType, msg.Data); err != nil {
		c.logger.Warn("apply failed, not acking", zap.String("topic", topic), zap.String("event_type", eventType), zap.Error(err))
		_ = msg.Nak()
		return
	}

	if err := msg.Ack(); err != nil {
		c.logger.Warn("ack failed", zap.String("topic", topic), zap.Error(err))
	}
}
