package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dmitrijs2005/sanes/internal/buildinfo"
	"github.com/dmitrijs2005/sanes/internal/client/cli"
	"github.com/dmitrijs2005/sanes/internal/client/client"
	"github.com/dmitrijs2005/sanes/internal/client/config"
	"github.com/dmitrijs2005/sanes/internal/client/repositories/notifications"
	"github.com/dmitrijs2005/sanes/internal/client/repositories/session"
	"github.com/dmitrijs2005/sanes/internal/client/services"
	"github.com/dmitrijs2005/sanes/internal/cryptox"
	"github.com/dmitrijs2005/sanes/internal/filex"
	"github.com/dmitrijs2005/sanes/internal/logging"
)

const (
	dbFileName  = "sanes.db"
	keyFileName = "session.key"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return err
	}

	var sealer session.Sealer
	if cfg.EncryptStore {
		key, err := cryptox.LoadOrCreateKey(filepath.Join(dir, keyFileName))
		if err != nil {
			return err
		}
		s, err := cryptox.NewSealer(key)
		if err != nil {
			return err
		}
		sealer = s
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, dbFileName))
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return err
	}
	defer db.Close()

	store := session.NewSQLiteStore(db, sealer)

	api, err := client.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout, store,
		client.WithRateLimit(cfg.RequestsPerSecond, cfg.RequestBurst),
		client.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	policy := services.InvalidateOnAnyError
	if cfg.KeepSessionOffline {
		policy = services.InvalidateOnUnauthorizedOnly
	}
	manager := services.NewSessionManager(api, store, logger, services.WithRevalidationPolicy(policy))

	catalog := services.NewCatalogService(api, manager, notifications.NewSQLiteRepository(db), logger)
	unwatch := catalog.WatchSession()
	defer unwatch()

	manager.Bootstrap(ctx)

	cli.NewApp(manager, catalog).Run(ctx)
	return nil
}
