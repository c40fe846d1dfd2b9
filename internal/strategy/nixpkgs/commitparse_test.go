package nixpkgs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePossiblyTouchedPackages_S1(t *testing.T) {
	lines := []string{
		"firefox{-esr,}: fix failing build due to the google-api-key",
		"Merge pull request #34483 from andir/dovecot-cve-2017-15132",
		"firefox: enable official branding",
		"buildkite-agent: enable building on darwin",
		"python.pkgs.ptyprocess: 0.5 -> 0.5.2",
		"python.pkgs.ptyprocess: move expression",
		"android-studio-preview: 3.1.0.8 -> 3.1.0.9",
		"foo,bar: something here: yeah",
	}

	want := []string{
		"firefox{-esr", "}", "firefox", "buildkite-agent",
		"python.pkgs.ptyprocess", "python.pkgs.ptyprocess",
		"android-studio-preview", "foo", "bar",
	}

	assert.Equal(t, want, ParsePossiblyTouchedPackages(lines))
}

func TestParsePossiblyTouchedPackages_Empty(t *testing.T) {
	assert.Empty(t, ParsePossiblyTouchedPackages(nil))
}

func TestParsePossiblyTouchedPackages_Stable(t *testing.T) {
	lines := []string{"firefox: bump"}
	first := ParsePossiblyTouchedPackages(lines)
	second := ParsePossiblyTouchedPackages(lines)
	assert.Equal(t, first, second)
}
