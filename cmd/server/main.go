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
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"matchcore/internal/api"
	"matchcore/internal/clock"
	"matchcore/internal/config"
	"matchcore/internal/kvstore"
	"matchcore/internal/matching"
	"matchcore/internal/notify"
	"matchcore/internal/projection"
	"matchcore/internal/realtime"
	"matchcore/internal/store"
	"matchcore/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Logging).Logger
	defer log.Sync()

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to database")

	pgStore := store.NewPostgresStore(db)
	realClock := clock.Real
	kv := kvstore.NewMemoryKVStore(realClock, cfg.Matching.HeartbeatExpiry, cfg.Matching.ActiveOrdersFlagTTL)
	hub := realtime.NewHub(log)
	go hub.Run(nil)

	secondary := notify.NewWebhookChannel(notify.Config{
		Timeout:        cfg.Secondary.Timeout,
		RequestsPerSec: cfg.Secondary.RequestsPerSec,
		Burst:          cfg.Secondary.Burst,
		RetryConfig:    notify.DefaultConfig().RetryConfig,
	}, log)

	projector := projection.NewProjector(pgStore, func() int64 { return realClock.Now().Unix() })

	engine := matching.NewEngine(
		matching.Config{
			TickInterval:        cfg.Matching.TickInterval,
			StartupGrace:        cfg.Matching.StartupGrace,
			NegotiationTimeout:  cfg.Matching.NegotiationTimeout,
			ConfirmationTimeout: cfg.Matching.ConfirmationTimeout,
		},
		log,
		realClock,
		pgStore,
		kv,
		projector,
		hub,
		secondary,
	)

	ctx, cancelEngine := context.WithCancel(context.Background())
	engine.Start(ctx)

	deps := &api.Dependencies{
		Log:    log,
		Engine: engine,
		Book:   projector,
		Hub:    api.NewHubUpgrader(hub, log),
	}
	router := api.SetupRoutes(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	engine.Stop()
	cancelEngine()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

func newLogger(cfg config.LoggingConfig) *utils.Logger {
	return utils.InitLogger(utils.LogConfig{
		Level:  cfg.Level,
		Format: cfg.Format,
	})
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
