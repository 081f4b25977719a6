// Package events provides a PostgreSQL-backed pub/sub EventBus built on Watermill.
//
// Repositories publish domain events inside their own transaction through
// PublishInTx, so an event exists if and only if the state change committed
// (transactional outbox). With the forwarder enabled, those rows land on an
// internal queue and the Forwarder daemon relays them to their real topics.
//
// Subscribers in the same service share a consumer group: each message is
// handled by one instance. Handlers must be idempotent; a failing handler is
// retried with exponential backoff before the message is Nacked.
//
// OTel trace context travels in message metadata from publisher to subscriber.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/todoapp/pkg/logger"
)

const (
	maxRetries      = 3
	retryBaseDelay  = time.Second
	shutdownTimeout = 30 * time.Second
	forwarderTopic  = "_forwarder_queue"
	errBuffer       = 100
)

// Options configures an EventBus.
type Options struct {
	// ConsumerGroup is shared by every instance of one service.
	ConsumerGroup string
	// Forwarder routes transactional publishes through the forwarder queue.
	// Call StartForwarder after construction.
	Forwarder bool
}

// EventBus publishes and consumes JSON domain events over Watermill's SQL
// transport. It borrows the caller's *sql.DB and never closes it.
type EventBus struct {
	db         *sql.DB
	publisher  message.Publisher
	subscriber *watermillsql.Subscriber
	fwd        *forwarder.Forwarder
	log        logger.Logger
	wlog       watermill.LoggerAdapter
	opts       Options
	wg         sync.WaitGroup
}

// NewEventBus initializes a Watermill SQL publisher and subscriber on db.
// Schema tables are created automatically on first use.
func NewEventBus(db *sql.DB, log logger.Logger, opts Options) (*EventBus, error) {
	wlog := &slogAdapter{log: log}

	pub, err := newSQLPublisher(db, wlog, true)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}

	sub, err := newSQLSubscriber(db, wlog, opts.ConsumerGroup)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}

	return &EventBus{
		db:         db,
		publisher:  wrapForwarder(pub, opts.Forwarder),
		subscriber: sub,
		log:        log,
		wlog:       wlog,
		opts:       opts,
	}, nil
}

func newSQLPublisher(db watermillsql.ContextExecutor, wlog watermill.LoggerAdapter, initSchema bool) (*watermillsql.Publisher, error) {
	return watermillsql.NewPublisher(
		db,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: initSchema,
		},
		wlog,
	)
}

func newSQLSubscriber(db *sql.DB, wlog watermill.LoggerAdapter, group string) (*watermillsql.Subscriber, error) {
	return watermillsql.NewSubscriber(
		db,
		watermillsql.SubscriberConfig{
			SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
			ConsumerGroup:    group,
		},
		wlog,
	)
}

func wrapForwarder(pub message.Publisher, enabled bool) message.Publisher {
	if !enabled {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
}

// StartForwarder starts the daemon that drains the forwarder queue into the
// target topics and blocks until it is running.
func (b *EventBus) StartForwarder(ctx context.Context) error {
	if !b.opts.Forwarder {
		return fmt.Errorf("events: StartForwarder called on non-forwarder EventBus")
	}
	if b.fwd != nil {
		return fmt.Errorf("events: forwarder already started")
	}

	fwdSub, err := newSQLSubscriber(b.db, b.wlog, "forwarder-consumer")
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	targetPub, err := newSQLPublisher(b.db, b.wlog, true)
	if err != nil {
		_ = fwdSub.Close()
		return fmt.Errorf("events: new forwarder target publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(fwdSub, targetPub, b.wlog, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = targetPub.Close()
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	b.fwd = fwd

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.log.InfoContext(ctx, "events: forwarder started")
		if err := fwd.Run(ctx); err != nil {
			b.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		b.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}
}

// NewMessage marshals payload as JSON into a Watermill message carrying the
// OTel trace context of ctx.
func NewMessage(ctx context.Context, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
	return msg, nil
}

// Publish sends payload as a JSON event on topic outside any transaction.
func (b *EventBus) Publish(ctx context.Context, topic string, payload any) error {
	msg, err := NewMessage(ctx, payload)
	if err != nil {
		return err
	}
	if err := b.publisher.Publish(topic, msg); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// PublishInTx publishes payload on topic as part of tx. The message becomes
// visible to subscribers only when tx commits.
func (b *EventBus) PublishInTx(ctx context.Context, tx *sql.Tx, topic string, payload any) error {
	// Tables exist once the bus is constructed, so no schema initialization here.
	pub, err := newSQLPublisher(tx, b.wlog, false)
	if err != nil {
		return fmt.Errorf("events: new tx publisher: %w", err)
	}
	msg, err := NewMessage(ctx, payload)
	if err != nil {
		return err
	}
	if err := wrapForwarder(pub, b.opts.Forwarder).Publish(topic, msg); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s in tx: %w", topic, err)
	}
	return nil
}

// Handler processes one message. The context carries the publisher's trace.
type Handler func(ctx context.Context, msg *message.Message) error

// Subscribe registers handler for topic and processes messages in the background.
//
//   - handler returns nil   → Ack
//   - handler returns error → retried up to 3× with exponential backoff (1s, 2s, 4s)
//   - retries exhausted     → Nack, error sent on the returned channel
//
// The returned channel is buffered and must be drained by the caller.
// Close waits for in-flight handlers.
func (b *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	ch, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errBuffer)
	propagator := otel.GetTextMapPropagator()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(errCh)

		for msg := range ch {
			msgCtx := propagator.Extract(ctx, propagation.MapCarrier(msg.Metadata))

			if err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, b.log); err != nil {
				msg.Nack()
				select {
				case errCh <- fmt.Errorf("%s: %w", topic, err):
				default:
					b.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"error", err, "topic", topic)
				}
				continue
			}
			msg.Ack()
		}
	}()

	return errCh, nil
}

// retryWithBackoff calls handler up to maxRetries times with exponential backoff.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	maxRetries int,
	baseDelay time.Duration,
	log logger.Logger,
) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"attempt", attempt,
			"max_retries", maxRetries,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("events: handler failed after %d retries: %w", maxRetries, err)
}

// Ping checks the EventBus database connection health.
func (b *EventBus) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and forwarder, waits up to 30s for in-flight
// handlers, then closes the publisher. The borrowed *sql.DB stays open.
func (b *EventBus) Close() error {
	if err := b.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if b.fwd != nil {
		if err := b.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		b.log.Error("events: timed out waiting for in-flight handlers to complete")
	}

	if err := b.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return nil
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
