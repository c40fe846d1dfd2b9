// -----------------------------------------------------------------------
// Consumer - the input-queue poll loop. One job at a time, no
// intra-worker concurrency (§5 "Scheduling model"): parallelism, if any,
// comes from running multiple worker processes, not multiple goroutines
// inside one. Retry-on-delete and SQLITE_BUSY tolerance follow
// internal/queue/worker.go's retryDelete.
// -----------------------------------------------------------------------

package bus

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// Handler processes one decoded message body and reports the ack
// decision: true acknowledges (delete), false asks for redelivery.
type Handler func(ctx context.Context, body []byte) (ack bool)

// Consumer polls a single input queue and hands each message to handler
// one at a time.
type Consumer struct {
	queue        *Queue
	pollInterval time.Duration
	logger       arbor.ILogger
}

// NewConsumer builds a Consumer over queue.
func NewConsumer(queue *Queue, pollInterval time.Duration, logger arbor.ILogger) *Consumer {
	return &Consumer{queue: queue, pollInterval: pollInterval, logger: logger}
}

// Run polls until ctx is cancelled, processing at most one message per
// tick.
func (c *Consumer) Run(ctx context.Context, handler Handler) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx, handler)
		}
	}
}

func (c *Consumer) tick(ctx context.Context, handler Handler) {
	msg, err := c.queue.Receive(ctx)
	if err != nil {
		if !errors.Is(err, ErrEmpty) {
			c.logger.Warn().Err(err).Msg("bus receive failed")
		}
		return
	}

	ack := handler(ctx, msg.body)
	if !ack {
		// Leave the message in place; it becomes visible again once its
		// visibility timeout elapses and is redelivered (§5).
		return
	}

	if err := c.retryDelete(ctx, msg); err != nil {
		c.logger.Error().Err(err).Msg("failed to delete acknowledged message after retries")
	}
}

func (c *Consumer) retryDelete(ctx context.Context, msg *received) error {
	delay := 200 * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		lastErr = c.queue.Delete(ctx, msg)
		if lastErr == nil {
			return nil
		}
		if !strings.Contains(lastErr.Error(), "database is locked") && !strings.Contains(lastErr.Error(), "SQLITE_BUSY") {
			return lastErr
		}
		time.Sleep(delay)
		delay *= 2
	}
	return lastErr
}
