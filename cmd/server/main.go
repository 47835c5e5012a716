package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/rolodex/pkg/api"
	"github.com/hazyhaar/rolodex/pkg/chassis"
	"github.com/hazyhaar/rolodex/pkg/contacts"
	"github.com/hazyhaar/rolodex/pkg/nickname"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

type config struct {
	Addr             string `yaml:"addr"`
	DBPath           string `yaml:"db_path"`
	NicknamesDir     string `yaml:"nicknames_dir"`
	Locale           string `yaml:"locale"`
	Country          string `yaml:"country"`
	ProfileAggregate int64  `yaml:"profile_aggregate"`
	CertFile         string `yaml:"cert_file"`
	KeyFile          string `yaml:"key_file"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "rebuild":
		cmdRebuild(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: rolodex <command>

Commands:
  serve     Start the contacts server (HTTP/1.1+2, HTTP/3, MCP over QUIC)
  import    Download and build nickname cluster tables
  rebuild   Re-derive all locale-sensitive indexes for a new locale
`)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := loadConfig(*cfgPath, logger)

	// Load nickname cluster tables.
	nicknames := nickname.NewRegistry(cfg.NicknamesDir)
	if err := nicknames.Load(); err != nil {
		// The engine works without cluster expansion; nickname search
		// degrades to literal matching.
		logger.Warn("nickname tables unavailable", "error", err, "dir", cfg.NicknamesDir)
	} else {
		logger.Info("nickname tables loaded", "tables", nicknames.TableCount(), "locales", nicknames.Locales())
	}

	store, err := contacts.Open(cfg.DBPath, contacts.Options{
		Logger:           logger,
		Country:          cfg.Country,
		Nicknames:        nicknames.ForLocale(cfg.Locale),
		ProfileAggregate: cfg.ProfileAggregate,
	})
	if err != nil {
		logger.Error("failed to open contacts db", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	// HTTP router + MCP tools over the same endpoints.
	router := api.NewRouter(store)
	mcpSrv := mcpserver.NewMCPServer("rolodex", "1.0.0")
	api.RegisterMCPTools(mcpSrv, store)

	srv, err := chassis.New(chassis.Config{
		Addr:      cfg.Addr,
		CertFile:  cfg.CertFile,
		KeyFile:   cfg.KeyFile,
		Handler:   router,
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("chassis init failed", "error", err)
		os.Exit(1)
	}

	// SIGHUP: hot reload nickname tables and swap the active locale table.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading nickname tables")
			if err := nicknames.Reload(); err != nil {
				logger.Error("reload failed", "error", err)
				continue
			}
			if err := store.RebuildLocale(cfg.Locale, nicknames.ForLocale(cfg.Locale)); err != nil {
				logger.Error("locale rebuild failed", "error", err)
				continue
			}
			logger.Info("nickname tables reloaded", "tables", nicknames.TableCount())
		}
	}()

	go func() {
		logger.Info("rolodex listening", "addr", cfg.Addr)
		if err := srv.Start(ctx); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	srv.Stop(context.Background())
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := config{
		Addr:         ":8443",
		DBPath:       "contacts.db",
		NicknamesDir: "nicknames",
		Locale:       "en",
		Country:      "US",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}
