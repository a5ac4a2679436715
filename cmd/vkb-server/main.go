package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dd0wney/vkb-viewer/pkg/api"
	"github.com/dd0wney/vkb-viewer/pkg/filter"
	"github.com/dd0wney/vkb-viewer/pkg/gateway"
	"github.com/dd0wney/vkb-viewer/pkg/ingest"
	"github.com/dd0wney/vkb-viewer/pkg/logging"
	"github.com/dd0wney/vkb-viewer/pkg/metrics"
	"github.com/dd0wney/vkb-viewer/pkg/prefs"
	"github.com/dd0wney/vkb-viewer/pkg/server"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Optional YAML config file")
	port := flag.Int("port", 0, "HTTP server port (default 8080, or set PORT)")
	staticDir := flag.String("static", "", "Directory of static UI assets to serve")
	prefsPath := flag.String("prefs", "", "Path to the preferences YAML file")
	gatewayURL := flag.String("gateway", "", "Base URL of the query service (enables online mode)")
	loadFile := flag.String("load", "", "NDJSON file to load as the initial snapshot")
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.applyEnv()

	// Flags override both file and environment
	if *port != 0 {
		cfg.Port = *port
	}
	if *staticDir != "" {
		cfg.StaticDir = *staticDir
	}
	if *prefsPath != "" {
		cfg.PrefsPath = *prefsPath
	}
	if *gatewayURL != "" {
		cfg.GatewayURL = *gatewayURL
	}
	if *loadFile != "" {
		cfg.LoadFile = *loadFile
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	logger.Info("knowledge viewer starting",
		logging.String("version", version),
		logging.Int("port", cfg.Port),
		logging.String("dataSource", cfg.DataSource),
	)

	reg := metrics.NewRegistry()

	var store *prefs.Store
	if cfg.PrefsPath != "" {
		var err error
		store, err = prefs.NewStore(cfg.PrefsPath)
		if err != nil {
			logger.Error("failed to load preferences", logging.Error(err))
			os.Exit(1)
		}
		if len(cfg.Teams) > 0 {
			if err := store.SetTeams(cfg.Teams); err != nil {
				logger.Warn("failed to persist configured teams", logging.Error(err))
			}
		}
		if err := store.SetDataSource(cfg.DataSource); err != nil {
			logger.Warn("failed to persist data source", logging.Error(err))
		}
	}

	var gw *gateway.Client
	if cfg.GatewayURL != "" {
		gw = gateway.NewClient(cfg.GatewayURL,
			gateway.WithLogger(logger),
			gateway.WithMetrics(reg),
		)
		logger.Info("query service configured", logging.String("url", cfg.GatewayURL))
	}

	apiServer := api.NewServer(api.Config{
		Gateway:    gw,
		Prefs:      store,
		Logger:     logger,
		Metrics:    reg,
		FilterOpts: filter.Options{HubDegree: cfg.HubDegree},
		StaticDir:  cfg.StaticDir,
		Version:    version,
	})

	if cfg.LoadFile != "" {
		if err := loadSnapshot(apiServer, reg, logger, cfg.LoadFile); err != nil {
			logger.Error("failed to load initial snapshot", logging.Error(err))
			os.Exit(1)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	gs := server.NewGracefulServer(addr, apiServer.Handler(), logger)
	if cfg.LoadFile != "" {
		gs.SetReloadFunc(func() error {
			return loadSnapshot(apiServer, reg, logger, cfg.LoadFile)
		})
	}

	if err := gs.Start(); err != nil {
		logger.Error("server error", logging.Error(err))
		os.Exit(1)
	}
}

// loadSnapshot parses an NDJSON export and installs it as the current
// snapshot
func loadSnapshot(apiServer *api.Server, reg *metrics.Registry, logger logging.Logger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	result, err := ingest.ParseLines(f, ingest.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	snap := result.Snapshot()
	apiServer.Holder().Replace(snap, "file")
	reg.RecordSnapshotLoad("file", snap.EntityCount(), snap.RelationCount(), result.SkippedLines)

	logger.Info("snapshot loaded",
		logging.Path(path),
		logging.Int("entities", snap.EntityCount()),
		logging.Int("relations", snap.RelationCount()),
		logging.Int("skipped", result.SkippedLines),
	)
	return nil
}
