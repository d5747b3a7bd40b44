// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"

	"github.com/warnerco/schematica/internal/catalog"
	"github.com/warnerco/schematica/internal/config"
	"github.com/warnerco/schematica/internal/database"
	"github.com/warnerco/schematica/internal/graph"
	"github.com/warnerco/schematica/internal/memstore"
	"github.com/warnerco/schematica/internal/pipeline"
	"github.com/warnerco/schematica/internal/server"
	"github.com/warnerco/schematica/internal/tools"
	"github.com/warnerco/schematica/pkg/scheduler"
)

// Version is set at build time via ldflags
var Version string

func main() {
	// CRITICAL: MCP servers must ONLY output JSON-RPC to stdout.
	// All logging goes to stderr.
	log := logrus.New()
	log.SetOutput(os.Stderr)

	httpMode := flag.Bool("http", false, "Run in HTTP server mode (default: stdio for MCP)")
	configPath := flag.String("config", "", "Path to config file")
	dbType := flag.String("db-type", "", "Database type (sqlite or postgres)")
	dbPath := flag.String("db-path", "", "Database path (for sqlite)")
	dbDSN := flag.String("db-dsn", "", "Database DSN (for postgres)")
	backendName := flag.String("backend", "", "Memory backend tier (keyword, vector or remote)")
	catalogPath := flag.String("catalog", "", "Path to the schematic catalog file")
	port := flag.Int("port", 0, "Server port (HTTP mode only)")
	skipIngest := flag.Bool("skip-ingest", false, "Do not ingest the catalog at startup")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Schematica MCP Server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Server Mode:\n")
		fmt.Fprintf(os.Stderr, "  %s            Start MCP server (stdio)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --http     Start MCP server over HTTP\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Info("Starting Schematica MCP Server...")

	cfg := loadConfig(*configPath, log)
	applyCLIOverrides(cfg, *dbType, *dbPath, *dbDSN, *backendName, *catalogPath, *port)

	log.WithFields(logrus.Fields{
		"database": cfg.Database.Type,
		"backend":  cfg.Memory.Backend,
	}).Info("configuration loaded")

	db, err := database.Connect(&database.Config{
		Type:        cfg.Database.Type,
		SQLitePath:  cfg.Database.SQLitePath,
		PostgresDSN: cfg.Database.PostgresDSN,
		LogLevel:    logger.Silent, // CRITICAL: silence GORM stdout output for MCP
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	store, err := graph.NewStore(db)
	if err != nil {
		log.WithError(err).Fatal("failed to build graph store")
	}
	stats := store.Stats()
	log.WithFields(logrus.Fields{
		"nodes": stats.NodeCount,
		"edges": stats.EdgeCount,
	}).Info("knowledge graph loaded")

	backend, err := memstore.New(&cfg.Memory)
	if err != nil {
		log.WithError(err).Fatal("failed to create memory backend")
	}

	directory := catalog.NewDirectory(nil)
	ingestor := catalog.NewIngestor(backend, store, db, log)

	if cfg.Catalog.Path != "" {
		schematics, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			log.WithError(err).Fatal("failed to load catalog")
		}
		for _, s := range schematics {
			directory.Put(s)
		}

		if !*skipIngest {
			result, err := ingestor.IngestAll(context.Background(), schematics)
			if err != nil {
				log.WithError(err).Fatal("catalog ingestion failed")
			}
			log.WithFields(logrus.Fields{
				"indexed":       result.Indexed,
				"entities":      result.EntitiesAdded,
				"relationships": result.RelationshipsAdded,
			}).Info("catalog ingested")
		}
	} else {
		log.Warn("no catalog path configured; starting with an empty index")
	}

	var reasoner pipeline.Reasoner
	if cfg.Reasoner.URL != "" {
		reasoner = pipeline.NewLLMReasoner(&cfg.Reasoner)
		log.WithField("model", cfg.Reasoner.Model).Info("LLM reasoning enabled")
	}

	p := pipeline.New(store, backend, directory, reasoner, cfg, log)
	toolCtx := tools.NewToolContext(p, store, backend, directory, ingestor, log)

	if cfg.Scheduler.Enabled && cfg.Catalog.Path != "" {
		sched := scheduler.NewScheduler(ingestor, directory, cfg.Catalog.Path, cfg.Scheduler.IntervalMinutes, log)
		sched.Start()
		defer sched.Stop()
		log.WithField("interval_minutes", cfg.Scheduler.IntervalMinutes).Info("catalog re-index scheduler started")
	}

	srv := server.NewMCPServer(cfg, toolCtx, log)

	if *httpMode {
		log.Info("MCP server ready (HTTP mode) - 10 tools registered")
		if err := srv.ServeHTTP(); err != nil {
			log.WithError(err).Fatal("HTTP server error")
		}
		return
	}

	log.Info("MCP server ready (stdio mode) - 10 tools registered")
	if err := srv.ServeStdio(); err != nil {
		log.WithError(err).Fatal("MCP server error")
	}
}

// loadConfig loads the config file, falling back to built-in defaults
func loadConfig(path string, log *logrus.Logger) *config.Config {
	if path != "" {
		cfg, err := config.LoadFromPath(path)
		if err != nil {
			log.WithError(err).Warnf("failed to load config from %s, using defaults", path)
			return config.DefaultConfig()
		}
		log.Infof("loaded configuration from %s", path)
		return cfg
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Warn("failed to load default config, using built-in defaults")
		return config.DefaultConfig()
	}
	return cfg
}

// applyCLIOverrides applies command-line flags on top of the loaded config
func applyCLIOverrides(cfg *config.Config, dbType, dbPath, dbDSN, backend, catalogPath string, port int) {
	if dbType != "" {
		cfg.Database.Type = dbType
	}
	if dbPath != "" {
		cfg.Database.SQLitePath = dbPath
	}
	if dbDSN != "" {
		cfg.Database.PostgresDSN = dbDSN
	}
	if backend != "" {
		cfg.Memory.Backend = backend
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if port > 0 {
		cfg.Server.Port = port
	}
}
