package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler must return nil only when processing succeeded and the offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r          *kafka.Reader
	commit     func(ctx context.Context, msgs ...kafka.Message) error
	workers    int
	backoff    time.Duration
	maxBackoff time.Duration
	log        *zap.Logger
}

func NewConsumer(brokers []string, group, topic string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:          r,
		commit:     r.CommitMessages,
		workers:    workers,
		backoff:    200 * time.Millisecond,
		maxBackoff: 30 * time.Second,
		log:        log,
	}
}

// Start fetches until ctx is cancelled. Each partition is owned by one worker, so its
// messages are handled and committed in offset order.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	queues := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan kafka.Message, 64)
		wg.Add(1)
		go func(jobs <-chan kafka.Message) {
			defer wg.Done()
			for m := range jobs {
				// after cancellation nothing more is committed; the group resumes from the last commit
				if ctx.Err() != nil {
					continue
				}
				c.handle(ctx, h, m)
			}
		}(queues[i])
	}
	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
		_ = c.r.Close()
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		select {
		case queues[c.slot(m.Partition)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

// handle retries a failing message with capped exponential backoff until it succeeds or
// ctx ends. Committing past a failed message would lose it, since commits are offsets.
func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message) {
	fields := []zap.Field{zap.String("topic", m.Topic), zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset)}
	delay := c.backoff
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			break
		}
		c.log.Warn("handler failed, retrying",
			append(fields, zap.Int("attempt", attempt), zap.Duration("retry_in", delay), zap.Error(err))...)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		delay = min(2*delay, c.maxBackoff)
	}
	if err := c.commit(ctx, m); err != nil && ctx.Err() == nil {
		c.log.Warn("commit failed", append(fields, zap.Error(err))...)
	}
}

func (c *Consumer) slot(partition int) int {
	if c.workers <= 1 || partition < 0 {
		return 0
	}
	return partition % c.workers
}
