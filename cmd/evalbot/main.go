package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"
	_ "modernc.org/sqlite"

	"github.com/ternarybob/evalbot/internal/acl"
	"github.com/ternarybob/evalbot/internal/bus"
	"github.com/ternarybob/evalbot/internal/common"
	"github.com/ternarybob/evalbot/internal/evaluator"
	"github.com/ternarybob/evalbot/internal/hostingapi"
	"github.com/ternarybob/evalbot/internal/metrics"
	"github.com/ternarybob/evalbot/internal/pipeline"
	"github.com/ternarybob/evalbot/internal/worktree"
)

// configPaths is a custom flag type that allows multiple -config flags.
type configPaths []string

func (c *configPaths) String() string { return fmt.Sprintf("%v", *c) }

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("evalbot version %s\n", common.GetVersion())
		os.Exit(0)
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("evalbot.toml"); err == nil {
			configFiles = append(configFiles, "evalbot.toml")
		}
	}

	defer common.RecoverWithCrashFile()

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	common.InstallCrashHandler(config.Logging.Directory)
	logger := common.SetupLogger(config)
	common.PrintBanner(config, logger)

	if err := run(config, logger); err != nil {
		logger.Fatal().Err(err).Msg("evalbot exited with an error")
	}
}

func run(config *common.Config, logger arbor.ILogger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, err := config.HostingToken()
	if err != nil {
		return fmt.Errorf("resolve hosting token: %w", err)
	}

	hosting, err := hostingapi.New(ctx, token)
	if err != nil {
		return fmt.Errorf("build hosting API client: %w", err)
	}

	db, err := sql.Open("sqlite", config.Bus.DatabasePath)
	if err != nil {
		return fmt.Errorf("open bus database: %w", err)
	}
	defer db.Close()

	inputQueue, err := bus.OpenQueue(ctx, db, config.Bus.InputQueue)
	if err != nil {
		return fmt.Errorf("open input queue: %w", err)
	}

	publisher, err := bus.NewPublisher(ctx, db, config.Bus.BuildResultsQueue)
	if err != nil {
		return fmt.Errorf("build publisher: %w", err)
	}

	treeCache := worktree.NewCache(config.Worktree.CacheRoot, config.Worktree.GitPath, token)
	eval := evaluator.New(config.Evaluator.NixInstantiatePath, config.Evaluator.NixEnvPath)
	selector := pipeline.NewSelector(config.Nixpkgs)
	archACL := acl.New(config.ACL, config.Nixpkgs.Architectures)

	var m *metrics.Metrics
	if config.Metrics.Enabled {
		m = metrics.New()
		common.SafeGo(logger, "metrics-listener", func() {
			serveMetrics(config.Metrics.ListenAddress, m, logger)
		})
	}

	driver := pipeline.New(config, hosting, treeCache, publisher, selector, eval, archACL, m, logger)
	consumer := bus.NewConsumer(inputQueue, config.Bus.PollInterval, logger)

	go runConsumer(ctx, consumer, driver.HandleMessage)

	logger.Info().Str("queue", config.Bus.InputQueue).Msg("evalbot ready, waiting for jobs")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	common.PrintShutdownBanner(logger)
	cancel()
	common.Stop()
	return nil
}

// runConsumer wraps the job-processing loop in the same deferred
// recover/crash-file/exit handler main() installs for its own goroutine
// (§12 "Crash/panic reporting"): a panic inside a strategy hook writes a
// crash report and lets the process exit rather than silently dropping
// the in-flight job or limping on with a dead consumer loop. The bus
// redelivers the job once the visibility timeout elapses after restart.
func runConsumer(ctx context.Context, consumer *bus.Consumer, handler bus.Handler) {
	defer common.RecoverWithCrashFile()
	consumer.Run(ctx, handler)
}

func serveMetrics(addr string, m *metrics.Metrics, logger arbor.ILogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn().Err(err).Str("address", addr).Msg("metrics listener stopped")
	}
}
