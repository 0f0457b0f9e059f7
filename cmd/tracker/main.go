package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/nOkuda/participation-tracker/internal/app"
	"github.com/nOkuda/participation-tracker/internal/config"
	"github.com/nOkuda/participation-tracker/internal/ctxutil"
	"github.com/nOkuda/participation-tracker/internal/db"
	"github.com/nOkuda/participation-tracker/internal/gate"
	"github.com/nOkuda/participation-tracker/internal/logging"
	"github.com/nOkuda/participation-tracker/internal/lookup"
	"github.com/nOkuda/participation-tracker/internal/observability"
	"github.com/nOkuda/participation-tracker/internal/picker"
)

var release = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer lg.Closer()

	closeSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		lg.Sugar.Warnw("sentry init failed", "err", err)
	}
	defer closeSentry()

	runID := uuid.NewString()
	sugar := lg.Sugar.With("run_id", runID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = ctxutil.WithRunID(ctx, runID)

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("db open", "err", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		sugar.Fatalw("migrate", "err", err)
	}
	if err := db.Seed(ctx, database); err != nil {
		sugar.Fatalw("seed", "err", err)
	}
	if err := db.TouchOpened(ctx, database); err != nil {
		sugar.Fatalw("metadata", "err", err)
	}

	// First CLI arg, when present, is a roster file to import before the
	// session starts; otherwise ROSTER_PATH applies.
	rosterPath := cfg.RosterPath
	if len(os.Args) > 1 {
		rosterPath = os.Args[1]
	}
	if rosterPath != "" {
		entries, err := gate.ReadRoster(rosterPath)
		if err != nil {
			sugar.Fatalw("read roster", "path", rosterPath, "err", err)
		}
		if err := db.UpsertRoster(ctx, database, entries); err != nil {
			sugar.Fatalw("upsert roster", "err", err)
		}
		sugar.Infow("roster imported", "path", rosterPath, "entries", len(entries))
	}

	students, err := db.ListEnrolled(ctx, database)
	if err != nil {
		sugar.Fatalw("list students", "err", err)
	}
	if len(students) == 0 {
		sugar.Fatalw("no enrolled students; run with a roster file as the first argument to import one")
	}

	index := lookup.New()
	index.Rebuild(students)

	app.StartHTTP(ctx, cfg.HTTPAddr, database)
	sugar.Infow("session started", "students", len(students), "http", cfg.HTTPAddr)

	repl := &app.REPL{
		DB:     database,
		Cfg:    cfg,
		Log:    sugar,
		Index:  index,
		Picker: picker.New(index, nil),
		Policy: db.CountSatisfactory,
	}
	if err := repl.Run(ctx); err != nil {
		sugar.Fatalw("session ended", "err", err)
	}
}
