package bus

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/evalbot/internal/interfaces"
	"github.com/ternarybob/evalbot/internal/models"
)

func TestPublisher_PublishBuildJobRoutesByArchitecture(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	p, err := NewPublisher(ctx, db, "build-results")
	require.NoError(t, err)

	job, ok := models.NewBuildJob(
		models.RepoDescriptor{FullName: "NixOS/nixpkgs"},
		models.PRDescriptor{Number: 1},
		"firefox",
		[]string{"firefox"},
		"NixOS/nixpkgs#1",
	)
	require.True(t, ok)
	require.NoError(t, p.PublishBuildJob(ctx, "x86_64-linux", job))
	require.NoError(t, p.PublishBuildJob(ctx, "aarch64-linux", job))

	x86Queue, err := OpenQueue(ctx, db, "build-inputs-x86_64-linux")
	require.NoError(t, err)
	msg, err := x86Queue.Receive(ctx)
	require.NoError(t, err)

	var got models.BuildJob
	require.NoError(t, json.Unmarshal(msg.body, &got))
	assert.Equal(t, []string{"firefox"}, got.Attributes)

	armQueue, err := OpenQueue(ctx, db, "build-inputs-aarch64-linux")
	require.NoError(t, err)
	_, err = armQueue.Receive(ctx)
	assert.NoError(t, err)
}

func TestPublisher_PublishQueuedBuildJobsGoesToResultsQueue(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	p, err := NewPublisher(ctx, db, "build-results")
	require.NoError(t, err)

	job, ok := models.NewBuildJob(
		models.RepoDescriptor{FullName: "NixOS/nixpkgs"},
		models.PRDescriptor{Number: 1},
		"firefox",
		[]string{"firefox"},
		"NixOS/nixpkgs#1",
	)
	require.True(t, ok)

	require.NoError(t, p.PublishQueuedBuildJobs(ctx, interfaces.QueuedBuildJobs{
		Job:           job,
		Architectures: []string{"x86_64-linux"},
	}))

	msg, err := p.resultsQueue.Receive(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(msg.body), "firefox")
}
