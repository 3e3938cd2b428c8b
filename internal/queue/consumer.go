package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// SalesLogFile is the file the consumer appends to inside its log directory.
const SalesLogFile = "sales.log"

// Consumer listens to the sale queue and appends one line per sale to
// <dir>/sales.log.
type Consumer struct {
	url    string
	queue  string
	dir    string
	logger *zap.Logger

	mu sync.Mutex // serialises writes to the log file
}

// NewConsumer returns a consumer.  Empty url, queueName or dir select
// DefaultURL, SaleRecordedQueue and "logs".
func NewConsumer(url, queueName, dir string, logger *zap.Logger) *Consumer {
	if url == "" {
		url = DefaultURL
	}
	if queueName == "" {
		queueName = SaleRecordedQueue
	}
	if dir == "" {
		dir = "logs"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{url: url, queue: queueName, dir: dir, logger: logger}
}

// Run connects to the broker and consumes until ctx is cancelled.  Dial
// failures and dropped connections are retried with exponential backoff
// capped at 30s.  Messages that cannot be handled are rejected without
// requeue so a poison message cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("sale-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("sale-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.Warn("sale-consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(d.Body); err != nil {
				c.logger.Error("sale-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes a SaleRecordedEvent and appends it to the sales log.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev SaleRecordedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Folio == "" {
		return errors.New("event without folio")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.dir, SalesLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatSaleLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatSaleLine renders ev as a single newline-terminated log line.
func FormatSaleLine(ev SaleRecordedEvent) string {
	return fmt.Sprintf("[%s] Sale recorded | folio=%s | film=%q | rating=%s | room=%q | tickets=%d | seats=[%s] | total=%d cents | payment=%d cents | change=%d cents\n",
		ev.IssuedAt, ev.Folio, ev.FilmTitle, ev.Rating, ev.RoomName, ev.Tickets,
		strings.Join(ev.Seats, ","), ev.TotalCents, ev.PaymentCents, ev.ChangeCents)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
