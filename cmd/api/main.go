package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-workoutmap/internal/config"
	"backend-workoutmap/internal/db"
	"backend-workoutmap/internal/events"
	"backend-workoutmap/internal/kv"
	"backend-workoutmap/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	connectEvents   func(config.Config) events.Publisher
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, kv.Store, *redis.Client, events.Publisher, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		connectEvents:   connectEvents,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	ctx := context.Background()

	rdb := deps.connectRedis(cfg)
	blobs, pg := openBlobs(ctx, cfg, deps, rdb)
	if pg != nil {
		defer pg.Close()
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(ctx, cfg, blobs, rdb, deps.connectEvents(cfg), signals, nil); err != nil {
		log.Printf("server exited with error: %v", err)
	}
}

// openBlobs picks the history backend. Any connection problem falls back to
// process memory so the widget still works for the session.
func openBlobs(ctx context.Context, cfg config.Config, deps mainDeps, rdb *redis.Client) (kv.Store, *pgxpool.Pool) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return kv.NewMemory(), nil
	case config.BackendPostgres:
		pg, err := deps.connectPostgres(cfg)
		if err != nil {
			log.Printf("postgres connection failed, keeping workouts in memory: %v", err)
			return kv.NewMemory(), nil
		}
		blobs := kv.NewPostgres(pg)
		if err := blobs.EnsureSchema(ctx); err != nil {
			log.Printf("postgres schema: %v", err)
		}
		return blobs, pg
	default:
		if rdb == nil {
			log.Printf("redis not configured, keeping workouts in memory")
			return kv.NewMemory(), nil
		}
		return kv.NewRedis(rdb), nil
	}
}

func connectEvents(cfg config.Config) events.Publisher {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return events.Nop{}
	}
	return events.NewKafka(brokers, cfg.KafkaTopic)
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the widget session and HTTP server and waits for termination
// signals.
func Run(ctx context.Context, cfg config.Config, blobs kv.Store, rdb *redis.Client, publisher events.Publisher, signals <-chan os.Signal, listen ListenFunc) error {
	srv := server.NewServer(cfg, blobs, rdb, publisher)
	defer func() {
		srv.Close()
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				log.Printf("events close: %v", err)
			}
		}
		if rdb != nil {
			_ = rdb.Close()
		}
	}()

	srv.Controller.Start(ctx)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return shutdownFn(srv.App, shutdownCtx)
}
