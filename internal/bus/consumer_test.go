package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/arbor"
)

func TestConsumer_DeliversAndAcknowledges(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	db := openTestDB(t)
	q, err := OpenQueue(ctx, db, "eval-jobs")
	require.NoError(t, err)
	require.NoError(t, q.Send(ctx, []byte("job-1")))

	received := make(chan string, 1)
	consumer := NewConsumer(q, 10*time.Millisecond, arbor.NewLogger())

	go consumer.Run(ctx, func(_ context.Context, body []byte) bool {
		received <- string(body)
		return true
	})

	select {
	case got := <-received:
		assert.Equal(t, "job-1", got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message delivery")
	}

	// Message should have been deleted after ack; give the tick loop a
	// moment to process the delete before asserting.
	time.Sleep(50 * time.Millisecond)
	_, err = q.Receive(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestConsumer_NegativeAckDoesNotDeleteMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	db := openTestDB(t)
	q, err := OpenQueue(ctx, db, "eval-jobs")
	require.NoError(t, err)
	require.NoError(t, q.Send(ctx, []byte("job-1")))

	var handled bool
	consumer := NewConsumer(q, 10*time.Millisecond, arbor.NewLogger())
	consumer.tick(ctx, func(context.Context, []byte) bool {
		handled = true
		return false
	})
	assert.True(t, handled)

	// The message is now invisible (in-flight) rather than deleted; a
	// second immediate receive finds nothing new to hand out.
	_, err = q.Receive(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
}
