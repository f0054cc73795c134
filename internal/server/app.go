// Package server assembles and runs the PixKeep server: it opens the
// database, runs migrations, connects object storage, wires the services
// and serves the HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pixkeep/pixkeep/internal/logging"
	"github.com/pixkeep/pixkeep/internal/server/config"
	"github.com/pixkeep/pixkeep/internal/server/httpapi"
	"github.com/pixkeep/pixkeep/internal/server/identity"
	"github.com/pixkeep/pixkeep/internal/server/objectstore"
	"github.com/pixkeep/pixkeep/internal/server/repositories/repomanager"
	"github.com/pixkeep/pixkeep/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	httpSrv *httpapi.Server
	sweeper *services.Sweeper
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		BaseEndpoint:  cfg.S3BaseEndpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	secret := []byte(cfg.SecretKey)
	verifier := identity.NewLocalVerifier(db, repos, identity.NopMailer{}, logger,
		secret, cfg.SessionTokenValidityDuration)

	accounts := services.NewAccountService(db, repos, verifier, logger)
	assets := services.NewAssetService(db, repos, store, logger)
	sweeper := services.NewSweeper(db, repos, store, logger, cfg.SweepInterval, cfg.SweepGrace)

	httpSrv := httpapi.NewServer(cfg.EndpointAddrHTTP, secret, accounts, assets, logger)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		httpSrv: httpSrv,
		sweeper: sweeper,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpSrv.Run(); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := app.httpSrv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, err.Error())
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), err.Error())
	}

	app.logger.Info(context.Background(), "app stopped")
}
