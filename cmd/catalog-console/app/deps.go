package app

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/metagrid-io/catalog-console/internal/catalog"
	"github.com/metagrid-io/catalog-console/internal/config"
	"github.com/metagrid-io/catalog-console/internal/graphql"
	"github.com/metagrid-io/catalog-console/internal/runs"
	"github.com/metagrid-io/catalog-console/internal/telemetry"
)

// deps bundles the sync core wired from configuration.
type deps struct {
	cfg        *config.Config
	exec       graphql.Executor
	svc        catalog.Service
	index      *catalog.Index
	reconciler *runs.Reconciler
	metrics    *telemetry.ConsoleMetrics
}

// loadConfig loads and validates the configuration named by the --config flag.
// Without a flag the defaults apply, leaving the backend unconfigured.
func loadConfig() (*config.Config, error) {
	var opts []config.Option
	if path := viper.GetString("config"); path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildDeps wires the sync core from configuration. The metrics argument may
// be nil, which leaves every instrument a no-op.
func buildDeps(cfg *config.Config, metrics *telemetry.ConsoleMetrics) *deps {
	exec := graphql.NewDefaultExecutor(cfg.Backend.URL,
		graphql.WithToken(cfg.Backend.Token()),
		graphql.WithTimeout(cfg.Backend.Timeout.Std()),
	)
	svc := catalog.NewDefaultService(exec)
	index := catalog.NewIndex()
	reconciler := runs.New(svc, index,
		runs.WithPollAttempts(cfg.Runs.PollAttempts),
		runs.WithPollInterval(cfg.Runs.PollInterval.Std()),
		runs.WithMetrics(metrics),
	)

	return &deps{
		cfg:        cfg,
		exec:       exec,
		svc:        svc,
		index:      index,
		reconciler: reconciler,
		metrics:    metrics,
	}
}
