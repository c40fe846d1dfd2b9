// -----------------------------------------------------------------------
// Publisher - the interfaces.Publisher implementation fanning out
// BuildJobs onto per-architecture queues plus one build-results queue
// (§6 "Outputs to the bus").
// -----------------------------------------------------------------------

package bus

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ternarybob/evalbot/internal/interfaces"
	"github.com/ternarybob/evalbot/internal/models"
)

// Publisher fans BuildJobs out onto architecture-specific queues and
// records one QueuedBuildJobs entry per scheduled job.
type Publisher struct {
	db            *sql.DB
	resultsQueue  *Queue
	archQueues    map[string]*Queue
}

var _ interfaces.Publisher = (*Publisher)(nil)

// NewPublisher opens the build-results queue. Per-architecture queues are
// opened lazily on first use so callers don't need to enumerate every
// architecture up front.
func NewPublisher(ctx context.Context, db *sql.DB, resultsQueueName string) (*Publisher, error) {
	results, err := OpenQueue(ctx, db, resultsQueueName)
	if err != nil {
		return nil, fmt.Errorf("open build-results queue: %w", err)
	}
	return &Publisher{
		db:           db,
		resultsQueue: results,
		archQueues:   make(map[string]*Queue),
	}, nil
}

// PublishBuildJob publishes one BuildJob on the given architecture's
// routing key.
func (p *Publisher) PublishBuildJob(ctx context.Context, architecture string, job models.BuildJob) error {
	q, err := p.architectureQueue(ctx, architecture)
	if err != nil {
		return err
	}
	if err := q.SendJSON(ctx, job); err != nil {
		return fmt.Errorf("publish build job to %s: %w", architecture, err)
	}
	return nil
}

// PublishQueuedBuildJobs publishes one record to the build-results queue.
func (p *Publisher) PublishQueuedBuildJobs(ctx context.Context, record interfaces.QueuedBuildJobs) error {
	if err := p.resultsQueue.SendJSON(ctx, record); err != nil {
		return fmt.Errorf("publish queued build jobs record: %w", err)
	}
	return nil
}

func (p *Publisher) architectureQueue(ctx context.Context, architecture string) (*Queue, error) {
	if q, ok := p.archQueues[architecture]; ok {
		return q, nil
	}
	q, err := OpenQueue(ctx, p.db, "build-inputs-"+architecture)
	if err != nil {
		return nil, fmt.Errorf("open build-inputs queue for %s: %w", architecture, err)
	}
	p.archQueues[architecture] = q
	return q, nil
}
