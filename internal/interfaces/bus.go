// -----------------------------------------------------------------------
// Bus - the message-bus collaborator (§6 "Input bus message", "Outputs
// to the bus"). Out of scope beyond the fields the core populates.
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/evalbot/internal/models"
)

// QueuedBuildJobs is published once per scheduled build job, carrying the
// set of architectures it was fanned out to (§6 Outputs).
type QueuedBuildJobs struct {
	Job           models.BuildJob
	Architectures []string
}

// Publisher is the borrowed collaborator the driver uses to emit downstream
// messages. Every call is synchronous and may block (§5).
type Publisher interface {
	// PublishBuildJob publishes one BuildJob on the given architecture's
	// routing key.
	PublishBuildJob(ctx context.Context, architecture string, job models.BuildJob) error

	// PublishQueuedBuildJobs publishes one record to the build-results
	// exchange/queue.
	PublishQueuedBuildJobs(ctx context.Context, record QueuedBuildJobs) error
}

// AckDecision is the worker's acknowledgement of the input message.
type AckDecision int

const (
	AckPositive AckDecision = iota
	AckNegative
)

// InboundMessage is a single message popped from the input queue.
type InboundMessage struct {
	Body []byte
}
