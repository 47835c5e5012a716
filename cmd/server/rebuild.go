package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hazyhaar/rolodex/pkg/contacts"
	"github.com/hazyhaar/rolodex/pkg/nickname"
)

// cmdRebuild re-derives every locale-sensitive index and display field in
// an offline pass: nickname cluster entries, name variants and sort keys
// all follow the new locale's table. Run it after changing locale or
// after importing fresh nickname tables while the server is down.
func cmdRebuild(args []string) {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	locale := fs.String("locale", "", "locale to rebuild for (default: config locale)")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := loadConfig(*cfgPath, logger)
	if *locale == "" {
		*locale = cfg.Locale
	}

	nicknames := nickname.NewRegistry(cfg.NicknamesDir)
	if err := nicknames.Load(); err != nil {
		logger.Warn("nickname tables unavailable", "error", err, "dir", cfg.NicknamesDir)
	}
	table := nicknames.ForLocale(*locale)
	if table == nil {
		logger.Warn("no nickname table for locale, rebuilding without cluster expansion", "locale", *locale)
	}

	store, err := contacts.Open(cfg.DBPath, contacts.Options{
		Logger:           logger,
		Country:          cfg.Country,
		Nicknames:        table,
		ProfileAggregate: cfg.ProfileAggregate,
	})
	if err != nil {
		logger.Error("failed to open contacts db", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.RebuildLocale(*locale, table); err != nil {
		logger.Error("rebuild failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Rebuild complete for locale %s\n", *locale)
}
