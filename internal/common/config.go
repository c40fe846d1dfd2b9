// -----------------------------------------------------------------------
// Configuration loading - TOML files merged in order, then environment
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the evaluation worker's configuration.
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig `toml:"logging"`
	Bus         BusConfig     `toml:"bus"`
	Hosting     HostingConfig `toml:"hosting"`
	Worktree    WorktreeConfig `toml:"worktree"`
	Evaluator   EvaluatorConfig `toml:"evaluator"`
	Nixpkgs     NixpkgsConfig `toml:"nixpkgs"`
	Metrics     MetricsConfig `toml:"metrics"`
	ACL         ACLConfig     `toml:"acl"`
}

// LoggingConfig controls the arbor logger.
type LoggingConfig struct {
	Level      string `toml:"level"`       // "debug", "info", "warn", "error"
	Directory  string `toml:"directory"`   // log file directory
	TimeFormat string `toml:"time_format"` // e.g. "15:04:05.000"
}

// BusConfig configures the message bus (goqite over sqlite).
type BusConfig struct {
	DatabasePath      string        `toml:"database_path"`
	InputQueue        string        `toml:"input_queue"`         // queue the driver reads EvaluationJobs from
	BuildResultsQueue string        `toml:"build_results_queue"` // QueuedBuildJobs records
	PollInterval      time.Duration `toml:"poll_interval"`
	VisibilityTimeout time.Duration `toml:"visibility_timeout"`
	MaxReceive        int           `toml:"max_receive"`
}

// HostingConfig configures the code-hosting API client.
type HostingConfig struct {
	TokenEnvVar   string `toml:"token_env_var"`  // env var holding the hosting API token
	StatusContext string `toml:"status_context"` // overall commit-status context name
}

// WorktreeConfig configures the on-disk checkout cache.
type WorktreeConfig struct {
	CacheRoot     string `toml:"cache_root"`
	GitPath       string `toml:"git_path"`
	DefaultBranch string `toml:"default_branch"`
}

// EvaluatorConfig configures the subprocess package-expression evaluator.
type EvaluatorConfig struct {
	NixInstantiatePath string        `toml:"nix_instantiate_path"`
	NixEnvPath         string        `toml:"nix_env_path"`
	Timeout            time.Duration `toml:"timeout"`
}

// NixpkgsConfig configures the Nixpkgs strategy.
type NixpkgsConfig struct {
	RepoFullName          string              `toml:"repo_full_name"` // selects the Nixpkgs strategy
	MaxMaintainerRequests int                 `toml:"max_maintainer_requests"`
	MaxBuildJobAttributes int                 `toml:"max_build_job_attributes"`
	PathTags              map[string][]string `toml:"path_tags"` // tag -> path prefixes
	Architectures         []string            `toml:"architectures"` // eligible build-job architectures when not WIP
}

// ACLConfig configures the (author, repo) -> architectures access-control
// lookup the WIP gate defers to for non-WIP pull requests.
type ACLConfig struct {
	TrustedAuthors    []string            `toml:"trusted_authors"`    // empty means every author is trusted
	RepoArchitectures map[string][]string `toml:"repo_architectures"` // repo full_name -> architecture override
}

// MetricsConfig configures the Prometheus metrics sink.
type MetricsConfig struct {
	Enabled       bool   `toml:"enabled"`
	ListenAddress string `toml:"listen_address"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:      "info",
			Directory:  "./logs",
			TimeFormat: "15:04:05.000",
		},
		Bus: BusConfig{
			DatabasePath:      "./evalbot.db",
			InputQueue:        "eval-jobs",
			BuildResultsQueue: "build-results",
			PollInterval:      1 * time.Second,
			VisibilityTimeout: 5 * time.Minute,
			MaxReceive:        3,
		},
		Hosting: HostingConfig{
			TokenEnvVar:   "GITHUB_TOKEN",
			StatusContext: "grahamcofborg-eval",
		},
		Worktree: WorktreeConfig{
			CacheRoot:     "./worktrees",
			GitPath:       "git",
			DefaultBranch: "master",
		},
		Evaluator: EvaluatorConfig{
			NixInstantiatePath: "nix-instantiate",
			NixEnvPath:         "nix-env",
			Timeout:            30 * time.Minute,
		},
		Nixpkgs: NixpkgsConfig{
			RepoFullName:          "NixOS/nixpkgs",
			MaxMaintainerRequests: 10,
			MaxBuildJobAttributes: 10,
			PathTags: map[string][]string{
				"8.has: documentation": {"doc/", "lib/"},
				"8.has: module (update)": {"nixos/modules/"},
			},
			Architectures: []string{"x86_64-linux", "x86_64-darwin"},
		},
		Metrics: MetricsConfig{
			Enabled:       false,
			ListenAddress: ":9090",
		},
		ACL: ACLConfig{
			TrustedAuthors:    nil,
			RepoArchitectures: map[string][]string{},
		},
	}
}

// LoadFromFiles loads the default configuration, then applies zero or more
// TOML files in order (later files override earlier ones), then applies
// environment variable overrides. Mirrors the teacher's layered-config
// startup sequence.
func LoadFromFiles(paths ...string) (*Config, error) {
	cfg := Default()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides lets a handful of operational settings be overridden
// without a config file, matching the teacher's CLI-flag-overrides-config
// precedence rule (env stands in for flags here since this is a headless
// worker process).
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EVALBOT_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("EVALBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EVALBOT_BUS_DATABASE_PATH"); v != "" {
		cfg.Bus.DatabasePath = v
	}
	if v := os.Getenv("EVALBOT_NIXPKGS_REPO"); v != "" {
		cfg.Nixpkgs.RepoFullName = v
	}
}

// HostingToken resolves the hosting API token from the configured env var.
func (c *Config) HostingToken() (string, error) {
	token := os.Getenv(c.Hosting.TokenEnvVar)
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("hosting API token not set: expected env var %s", c.Hosting.TokenEnvVar)
	}
	return token, nil
}
