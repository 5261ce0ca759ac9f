package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/alisadev/weather-skill/internal/api"
	"github.com/alisadev/weather-skill/internal/meteo"
	"github.com/alisadev/weather-skill/internal/morph"
	"github.com/alisadev/weather-skill/internal/session"
	"github.com/alisadev/weather-skill/internal/skill"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	port := getEnv("PORT", "8080")
	redisURL := os.Getenv("REDIS_URL")
	sessionTTL, err := getEnvDuration("SESSION_TTL", session.DefaultTTL)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Dialog state lives in Redis when configured, otherwise in process
	// memory with periodic eviction.
	var sessions session.Store
	var redisClient *redis.Client
	var memStore *session.MemoryStore

	if redisURL != "" {
		redisClient, err = session.Connect(ctx, redisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()
		sessions = session.NewRedisStore(redisClient, sessionTTL)
		log.Info("using redis session store", "ttl", sessionTTL)
	} else {
		memStore = session.NewMemoryStore(sessionTTL)
		sessions = memStore
		log.Info("using in-memory session store", "ttl", sessionTTL)
	}

	// Wire dependencies.
	geocoder := clientForEnv("NOMINATIM_URL", meteo.NewGeocodingClient, meteo.NewGeocodingClientWithURL)
	weather := clientForEnv("OPEN_METEO_URL", meteo.NewWeatherClient, meteo.NewWeatherClientWithURL)
	airQuality := clientForEnv("AIR_QUALITY_URL", meteo.NewAirQualityClient, meteo.NewAirQualityClientWithURL)

	orchestrator := skill.NewOrchestrator(geocoder, weather, airQuality,
		morph.NewRuleDecliner(), sessions, log)

	handlers := api.NewHandlers(orchestrator, log)
	router := api.NewRouter(handlers, redisPingerFor(redisClient), log)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}
		return nil
	})

	if memStore != nil {
		g.Go(func() error {
			if err := memStore.Run(gCtx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("server shut down cleanly")
	return nil
}

// clientForEnv builds a client with its production URL, or with the override
// from the named environment variable when set.
func clientForEnv[T any](key string, newClient func() T, newWithURL func(string) T) T {
	if v := os.Getenv(key); v != "" {
		return newWithURL(v)
	}
	return newClient()
}

// redisPinger mirrors the interface the health handler checks.
type redisPinger interface {
	Ping(ctx context.Context) error
}

// redisPingerAdapter adapts redis.Client to the health handler's pinger.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// redisPingerFor returns a pinger for the client, or nil when Redis is not
// configured.
func redisPingerFor(client *redis.Client) redisPinger {
	if client == nil {
		return nil
	}
	return &redisPingerAdapter{client: client}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
