package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agenthands/flavorgraph/internal/cache"
	"github.com/agenthands/flavorgraph/internal/config"
	"github.com/agenthands/flavorgraph/internal/core"
	"github.com/agenthands/flavorgraph/internal/core/recency"
	"github.com/agenthands/flavorgraph/internal/driver"
	"github.com/agenthands/flavorgraph/internal/logging"
	"github.com/agenthands/flavorgraph/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logging.Info().Msg("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.ApplyEnv(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid environment configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

// run owns every connection it opens and closes them before returning.
func run(ctx context.Context, cfg *config.Config) error {
	neo, err := driver.NewNeo4jDriver(ctx, cfg.Neo4j)
	if err != nil {
		return fmt.Errorf("failed to connect to Neo4j: %w", err)
	}
	defer neo.Close(context.Background())

	graph := core.NewFlavorGraph(driver.NewBreakerDriver(neo, cfg.Breaker), cfg.Flavor.MaxDepth)
	if err := graph.BuildIndices(ctx); err != nil {
		return fmt.Errorf("failed to build schema: %w", err)
	}
	if err := graph.SeedCategories(ctx, cfg.Categories); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	var store recency.Store = core.NewLatestPairingStore(graph)
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer client.Close()
		store = cache.NewLatestPairingStore(client, cfg.Redis.KeyPrefix)
	}

	window := recency.NewWindow(store)
	if err := window.Load(ctx); err != nil {
		return fmt.Errorf("failed to load latest pairings: %w", err)
	}

	srv := server.NewServer(core.NewPairingService(graph, window))
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logging.Info().Str("port", cfg.Server.Port).Msg("Starting server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
