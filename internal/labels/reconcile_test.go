package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile_AddSkipsAlreadyPresent(t *testing.T) {
	plan := Reconcile([]string{"10.rebuild-linux"}, []string{"10.rebuild-linux", "10.rebuild-darwin"}, nil)
	assert.Equal(t, []string{"10.rebuild-darwin"}, plan.Add)
	assert.Empty(t, plan.Remove)
}

func TestReconcile_RemoveIgnoresAbsent(t *testing.T) {
	plan := Reconcile([]string{"10.rebuild-linux"}, nil, []string{"10.rebuild-linux", "10.rebuild-darwin"})
	assert.Equal(t, []string{"10.rebuild-linux"}, plan.Remove)
}

func TestReconcile_IdempotentWhenReplayed(t *testing.T) {
	current := []string{"8.has: clean-eval", "10.rebuild-darwin"}
	add := []string{"8.has: clean-eval", "6.topic: python"}
	remove := []string{"10.rebuild-darwin"}

	first := Reconcile(current, add, remove)

	next := make([]string, 0, len(current)+len(first.Add))
	next = append(next, current...)
	for _, l := range first.Add {
		next = append(next, l)
	}
	filtered := next[:0]
	for _, l := range next {
		removed := false
		for _, r := range first.Remove {
			if l == r {
				removed = true
				break
			}
		}
		if !removed {
			filtered = append(filtered, l)
		}
	}

	second := Reconcile(filtered, add, remove)
	assert.True(t, second.IsNoop())
}

func TestReconcile_DedupesRequestedLabels(t *testing.T) {
	plan := Reconcile(nil, []string{"6.topic: python", "6.topic: python"}, nil)
	assert.Equal(t, []string{"6.topic: python"}, plan.Add)
}
