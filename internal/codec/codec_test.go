package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/evalbot/internal/models"
)

func TestDecode_RoundTrip(t *testing.T) {
	branch := "release-23.11"
	job := models.EvaluationJob{
		Repo: models.RepoDescriptor{
			Owner:    "NixOS",
			Name:     "nixpkgs",
			FullName: "NixOS/nixpkgs",
			CloneURL: "https://github.com/NixOS/nixpkgs.git",
		},
		PR: models.PRDescriptor{
			Number:       12345,
			HeadSHA:      "abc123",
			TargetBranch: &branch,
		},
	}

	body, err := Encode(job)
	require.NoError(t, err)

	decoded, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, job, decoded)
}

func TestDecode_RejectsMalformedPayload(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecode_RejectsMissingFullName(t *testing.T) {
	_, err := Decode([]byte(`{"pull_request":{"number":1,"head_sha":"a"}}`))
	assert.Error(t, err)
}

func TestDecode_RejectsMissingHeadSHA(t *testing.T) {
	_, err := Decode([]byte(`{"repository":{"full_name":"a/b"},"pull_request":{"number":1}}`))
	assert.Error(t, err)
}
