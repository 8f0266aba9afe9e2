package kafka

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordingCommitter struct {
	m       sync.Mutex
	offsets []int64
}

func (r *recordingCommitter) commit(_ context.Context, msgs ...kafka.Message) error {
	r.m.Lock()
	defer r.m.Unlock()
	for _, m := range msgs {
		r.offsets = append(r.offsets, m.Offset)
	}
	return nil
}

func (r *recordingCommitter) committed() []int64 {
	r.m.Lock()
	defer r.m.Unlock()
	return append([]int64(nil), r.offsets...)
}

func testConsumer(rc *recordingCommitter) *Consumer {
	return &Consumer{
		commit:     rc.commit,
		workers:    1,
		backoff:    time.Millisecond,
		maxBackoff: 4 * time.Millisecond,
		log:        zap.NewNop(),
	}
}

func TestConsumer_FailedMessageIsHandledAgainBeforeCommit(t *testing.T) {
	rc := &recordingCommitter{}
	c := testConsumer(rc)
	calls := 0
	h := func(context.Context, kafka.Message) error {
		calls++
		if calls < 3 {
			return assert.AnError
		}
		return nil
	}

	c.handle(context.Background(), h, kafka.Message{Offset: 7})

	assert.Equal(t, 3, calls)
	assert.Equal(t, []int64{7}, rc.committed())
}

func TestConsumer_CancelledRetryIsNotCommitted(t *testing.T) {
	rc := &recordingCommitter{}
	c := testConsumer(rc)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.handle(ctx, func(context.Context, kafka.Message) error { return assert.AnError }, kafka.Message{Offset: 9})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handle did not stop after cancellation")
	}
	assert.Empty(t, rc.committed())
}

func TestConsumer_SlotIsStablePerPartition(t *testing.T) {
	c := &Consumer{workers: 4}

	for p := range 12 {
		assert.Equal(t, p%4, c.slot(p))
		assert.Equal(t, c.slot(p), c.slot(p))
	}
	assert.Equal(t, 0, (&Consumer{workers: 1}).slot(5))
}
