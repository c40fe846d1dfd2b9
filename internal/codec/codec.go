// -----------------------------------------------------------------------
// Job Codec (§3 "Input bus message", §4.1 phase 1). Decodes the raw bus
// payload into an EvaluationJob; a malformed payload is a decode error,
// not a Fail/FailWithGist — it never reaches a strategy.
// -----------------------------------------------------------------------

package codec

import (
	"encoding/json"
	"fmt"

	"github.com/ternarybob/evalbot/internal/models"
)

// wireJob is the on-the-wire shape of an input bus message. Field names
// match the hosting webhook payload this worker is fed from.
type wireJob struct {
	Repository struct {
		Owner    string `json:"owner"`
		Name     string `json:"name"`
		FullName string `json:"full_name"`
		CloneURL string `json:"clone_url"`
	} `json:"repository"`
	PullRequest struct {
		Number       int     `json:"number"`
		HeadSHA      string  `json:"head_sha"`
		TargetBranch *string `json:"target_branch,omitempty"`
	} `json:"pull_request"`
}

// Decode parses a raw bus message body into an EvaluationJob. Returns an
// error if the payload is not well-formed JSON or is missing a field the
// pipeline cannot proceed without.
func Decode(body []byte) (models.EvaluationJob, error) {
	var w wireJob
	if err := json.Unmarshal(body, &w); err != nil {
		return models.EvaluationJob{}, fmt.Errorf("decode job payload: %w", err)
	}

	if w.Repository.FullName == "" {
		return models.EvaluationJob{}, fmt.Errorf("decode job payload: repository.full_name is required")
	}
	if w.PullRequest.Number == 0 {
		return models.EvaluationJob{}, fmt.Errorf("decode job payload: pull_request.number is required")
	}
	if w.PullRequest.HeadSHA == "" {
		return models.EvaluationJob{}, fmt.Errorf("decode job payload: pull_request.head_sha is required")
	}

	return models.EvaluationJob{
		Repo: models.RepoDescriptor{
			Owner:    w.Repository.Owner,
			Name:     w.Repository.Name,
			FullName: w.Repository.FullName,
			CloneURL: w.Repository.CloneURL,
		},
		PR: models.PRDescriptor{
			Number:       w.PullRequest.Number,
			HeadSHA:      w.PullRequest.HeadSHA,
			TargetBranch: w.PullRequest.TargetBranch,
		},
	}, nil
}

// Encode serializes an EvaluationJob back to its wire form. Used by
// producers (and by tests exercising the round-trip law in §8).
func Encode(job models.EvaluationJob) ([]byte, error) {
	var w wireJob
	w.Repository.Owner = job.Repo.Owner
	w.Repository.Name = job.Repo.Name
	w.Repository.FullName = job.Repo.FullName
	w.Repository.CloneURL = job.Repo.CloneURL
	w.PullRequest.Number = job.PR.Number
	w.PullRequest.HeadSHA = job.PR.HeadSHA
	w.PullRequest.TargetBranch = job.PR.TargetBranch

	out, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode job payload: %w", err)
	}
	return out, nil
}
