package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/keyip-citation-network/internal/config"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
	ErrConsumerClosed = errors.New(errors.ErrCodeInternal, "consumer closed")
)

const (
	defaultMaxBytes     = 10 * 1024 * 1024
	defaultMaxBackoff   = 30 * time.Second
	fetchErrorPause     = time.Second
	headerOriginalTopic = "original_topic"
	headerErrorMessage  = "error_message"
)

// Message is a consumed record handed to a MessageHandler.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
	Headers   map[string]string
}

// MessageHandler processes one message.  A nil return commits the offset.
type MessageHandler func(ctx context.Context, msg *Message) error

// MessageObserver is told the outcome and duration of every handled message.
type MessageObserver func(topic string, err error, elapsed time.Duration)

// Publisher is the dead-letter sink.  *Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerStats is a snapshot of the consumer counters.
type ConsumerStats struct {
	Consumed     int64
	Processed    int64
	Failed       int64
	Retried      int64
	DeadLettered int64
	Lag          int64
}

type consumerCounters struct {
	consumed     atomic.Int64
	processed    atomic.Int64
	failed       atomic.Int64
	retried      atomic.Int64
	deadLettered atomic.Int64
	lag          atomic.Int64
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithDeadLetter sets where exhausted messages are published.
func WithDeadLetter(p Publisher) ConsumerOption {
	return func(c *Consumer) { c.deadLetter = p }
}

// WithMessageObserver registers a per-message callback.
func WithMessageObserver(o MessageObserver) ConsumerOption {
	return func(c *Consumer) { c.observer = o }
}

// Consumer reads one consumer-group subscription and dispatches by topic.
type Consumer struct {
	reader ReaderInterface
	config config.KafkaConfig
	logger logging.Logger

	handlers map[string]MessageHandler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	deadLetter Publisher
	observer   MessageObserver
	counters   consumerCounters
}

// NewConsumer validates cfg and builds a group reader for cfg.Topic.
func NewConsumer(cfg config.KafkaConfig, logger logging.Logger, opts ...ConsumerOption) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		CommitInterval: cfg.CommitInterval,
		StartOffset:    kafka.FirstOffset,
	}
	if readerCfg.MinBytes <= 0 {
		readerCfg.MinBytes = 1
	}
	if readerCfg.MaxBytes <= 0 {
		readerCfg.MaxBytes = defaultMaxBytes
	}
	if cfg.StartOffset == "latest" {
		readerCfg.StartOffset = kafka.LastOffset
	}

	return newConsumerWithReader(kafka.NewReader(readerCfg), cfg, logger, opts...), nil
}

func newConsumerWithReader(reader ReaderInterface, cfg config.KafkaConfig, logger logging.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		reader:   reader,
		config:   cfg,
		logger:   logger.Named("kafka_consumer"),
		handlers: make(map[string]MessageHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers handler for topic, replacing any previous one.
func (c *Consumer) Subscribe(topic string, handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("subscribed to topic", logging.String("topic", topic))
}

// Start launches the consume loop.  It returns immediately.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)

	c.logger.Info("kafka consumer started",
		logging.String("group", c.config.GroupID),
		logging.String("topic", c.config.Topic))
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch message failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchErrorPause):
			}
			continue
		}

		c.counters.consumed.Add(1)
		if m.HighWaterMark > 0 {
			c.counters.lag.Store(m.HighWaterMark - m.Offset - 1)
		}

		c.mu.RLock()
		handler, ok := c.handlers[m.Topic]
		c.mu.RUnlock()

		if !ok {
			c.logger.Warn("no handler for topic", logging.String("topic", m.Topic))
		} else if err := c.processMessage(ctx, toMessage(m), handler); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.counters.failed.Add(1)
		} else {
			c.counters.processed.Add(1)
		}

		// Exhausted and dead-lettered messages are committed too so one poison
		// record cannot stall the partition.
		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", logging.Err(err), logging.Int64("offset", m.Offset))
		}
	}
}

func toMessage(m kafka.Message) *Message {
	msg := &Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// processMessage runs handler with retries.  Validation and serialization
// failures are permanent and skip the retry loop.
func (c *Consumer) processMessage(ctx context.Context, msg *Message, handler MessageHandler) error {
	err := c.handle(ctx, msg, handler)
	if err == nil {
		return nil
	}

	backoff := c.config.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	for i := 0; i < c.config.MaxRetries && !permanent(err); i++ {
		c.counters.retried.Add(1)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if err = c.handle(ctx, msg, handler); err == nil {
			return nil
		}
		backoff *= 2
		if backoff > defaultMaxBackoff {
			backoff = defaultMaxBackoff
		}
	}

	c.logger.Error("message processing failed",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Err(err))
	c.sendToDeadLetter(ctx, msg, err)
	return err
}

func (c *Consumer) handle(ctx context.Context, msg *Message, handler MessageHandler) error {
	start := time.Now()
	err := handler(ctx, msg)
	if c.observer != nil {
		c.observer(msg.Topic, err, time.Since(start))
	}
	return err
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg *Message, cause error) {
	if c.deadLetter == nil || c.config.DeadLetterTopic == "" {
		return
	}
	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[headerOriginalTopic] = msg.Topic
	headers[headerErrorMessage] = cause.Error()

	dl := &ProducerMessage{
		Topic:   c.config.DeadLetterTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if err := c.deadLetter.Publish(ctx, dl); err != nil {
		c.logger.Error("dead letter publish failed", logging.Err(err))
		return
	}
	c.counters.deadLettered.Add(1)
}

func permanent(err error) bool {
	return errors.IsCode(err, errors.ErrCodeValidation) || errors.IsCode(err, errors.ErrCodeSerialization)
}

// Stats returns a snapshot of the counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Consumed:     c.counters.consumed.Load(),
		Processed:    c.counters.processed.Load(),
		Failed:       c.counters.failed.Load(),
		Retried:      c.counters.retried.Load(),
		DeadLettered: c.counters.deadLettered.Load(),
		Lag:          c.counters.lag.Load(),
	}
}

// Close stops the loop, waits for the in-flight message and closes the reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	err := c.reader.Close()
	c.logger.Info("kafka consumer closed", logging.Int64("consumed", c.counters.consumed.Load()))
	return err
}

// ValidateConsumerConfig checks the fields NewConsumer depends on.
func ValidateConsumerConfig(cfg config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "group id required")
	}
	if cfg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "topic required")
	}
	if cfg.StartOffset != "" && cfg.StartOffset != "earliest" && cfg.StartOffset != "latest" {
		return errors.New(errors.ErrCodeValidation, "invalid start offset")
	}
	if cfg.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
