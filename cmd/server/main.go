package main // Entry point package

import (
	"context"
	"errors"
	"log" // Logging library
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/juju/loggo"
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/config" // Internal config loader
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/repository/memory"
	"github.com/iliyamo/table-reservation/internal/router" // Internal router setup
	"github.com/iliyamo/table-reservation/internal/service"
	"github.com/iliyamo/table-reservation/internal/store"
)

func main() {
	cfg := config.Load() // Load environment config
	if spec := os.Getenv("LOG_LEVELS"); spec != "" {
		if err := loggo.ConfigureLoggers(spec); err != nil {
			log.Printf("invalid LOG_LEVELS %q: %v", spec, err)
		}
	}

	policy := config.LoadPolicy()
	st, closeStore := openStore(cfg)
	defer closeStore()

	clk := clock.WallClock
	ops := allocation.NewTimeOps(policy)
	notifier := service.NewNotifier(service.AMQPPublisher{URL: cfg.RabbitURL}, clk)
	lifecycle := booking.NewLifecycle(st, ops, clk, notifier)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: rate limiting and caching disabled")
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	router.Register(e, handler.New(lifecycle, st, ops, clk), router.Options{
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go booking.NewSweeper(lifecycle, clk, cfg.SweepInterval).Run(ctx)

	addr := ":" + cfg.Port                                                              // Address string with port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver) // Print startup info
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdown); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openStore returns the configured store and a function releasing it.
func openStore(cfg config.Config) (store.Store, func()) {
	if cfg.StoreDriver == config.DriverMemory {
		mem := memory.New()
		if cfg.MemorySeed != "" {
			if err := mem.LoadSeed(cfg.MemorySeed); err != nil {
				log.Fatalf("memory seed %s: %v", cfg.MemorySeed, err)
			}
		}
		return mem, func() {}
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	return repository.NewStore(db), func() { _ = db.Close() }
}
