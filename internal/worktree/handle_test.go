package worktree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitNonEmptyLines_DropsBlankEntries(t *testing.T) {
	out := splitNonEmptyLines("firefox: bump to 120.0\n\npython.pkgs.ptyprocess: 0.7.0 -> 0.7.1\n")
	assert.Equal(t, []string{"firefox: bump to 120.0", "python.pkgs.ptyprocess: 0.7.0 -> 0.7.1"}, out)
}

func TestSplitNonEmptyLines_Empty(t *testing.T) {
	assert.Empty(t, splitNonEmptyLines(""))
}
