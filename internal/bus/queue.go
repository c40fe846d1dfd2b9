// -----------------------------------------------------------------------
// Queue - a thin wrapper around goqite, grounded on
// internal/queue/manager.go. Provides only send/receive/delete/extend;
// no business logic.
// -----------------------------------------------------------------------

package bus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"maragu.dev/goqite"
)

// ErrEmpty is returned when a receive finds no message waiting.
var ErrEmpty = errors.New("bus: no message available")

// Queue is a single named goqite-backed queue.
type Queue struct {
	name string
	q    *goqite.Queue
}

// OpenQueue creates (if needed) and opens a named queue against db.
func OpenQueue(ctx context.Context, db *sql.DB, name string) (*Queue, error) {
	if err := goqite.Setup(ctx, db); err != nil && !strings.Contains(err.Error(), "already exists") {
		return nil, err
	}
	return &Queue{
		name: name,
		q: goqite.New(goqite.NewOpts{
			DB:   db,
			Name: name,
		}),
	}, nil
}

// Send publishes a raw payload onto the queue.
func (q *Queue) Send(ctx context.Context, body []byte) error {
	return q.q.Send(ctx, goqite.Message{Body: body})
}

// SendJSON marshals v and publishes it onto the queue.
func (q *Queue) SendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return q.Send(ctx, data)
}

// received is a message popped from the queue, along with its delete
// handle. Re-delivery happens automatically once the visibility timeout
// elapses without a Delete call (§5 "Cancellation/timeout").
type received struct {
	id   goqite.ID
	body []byte
}

// Receive pops the next message, or ErrEmpty if none is waiting.
func (q *Queue) Receive(ctx context.Context) (*received, error) {
	msg, err := q.q.Receive(ctx)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrEmpty
	}
	return &received{id: msg.ID, body: msg.Body}, nil
}

// Delete acknowledges a message, preventing re-delivery.
func (q *Queue) Delete(ctx context.Context, r *received) error {
	return q.q.Delete(ctx, r.id)
}

// Extend extends a message's visibility timeout during long-running
// processing.
func (q *Queue) Extend(ctx context.Context, r *received, d time.Duration) error {
	return q.q.Extend(ctx, r.id, d)
}
