package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/leadtriage/backend/internal/ai"
	"github.com/leadtriage/backend/internal/blob"
	"github.com/leadtriage/backend/internal/config"
	httpapi "github.com/leadtriage/backend/internal/http"
	"github.com/leadtriage/backend/internal/notify"
	"github.com/leadtriage/backend/internal/seed"
	"github.com/leadtriage/backend/internal/service"
	"github.com/leadtriage/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "leadtriage").Logger()
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, err := blob.Open(ctx, blob.Options{
		Driver:      cfg.StorageDriver,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}
	defer blobs.Close()

	leads := store.New(store.Options{
		Persister:   store.BlobPersister{Blobs: blobs, Key: cfg.StorageKey},
		Seeds:       seed.FileProvider{Path: cfg.SeedFile},
		PhoneRegion: cfg.DefaultPhoneRegion,
		Logger:      logger.With().Str("component", "store").Logger(),
	})
	if err := leads.Initialize(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize lead store")
	}

	qualifier, err := buildQualifier(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build scoring client")
	}

	runner := &service.Runner{
		Store: leads,
		Orchestrator: &service.Orchestrator{
			Qualifier:   qualifier,
			Cooldown:    cfg.BatchCooldown,
			AbortOnAuth: cfg.BatchAbortOnAuth,
			Logger:      logger.With().Str("component", "orchestrator").Logger(),
		},
		Notifier: buildNotifier(cfg, logger),
		Logger:   logger.With().Str("component", "runner").Logger(),
	}

	router := httpapi.Router(cfg, leads, runner, blobs, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		runner.Cancel()
		err := srv.Shutdown(ctxShutdown)
		runner.Wait()
		return err
	})
	if cfg.QualifySchedule != "" {
		sched, err := service.NewScheduler(cfg.QualifySchedule, runner, logger.With().Str("component", "scheduler").Logger())
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid QUALIFY_SCHEDULE")
		}
		logger.Info().Str("schedule", cfg.QualifySchedule).Msg("scheduled qualification enabled")
		g.Go(func() error { return sched.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}

func buildQualifier(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ai.Qualifier, error) {
	var base ai.Qualifier
	switch cfg.Provider() {
	case "openai":
		base = ai.OpenAIClient{
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			APIKey:      cfg.OpenAIAPIKey,
			Temperature: cfg.ScoringTemperature,
			MaxTokens:   cfg.ScoringMaxTokens,
			Timeout:     cfg.ScoringTimeout,
			Client:      &http.Client{},
		}
	case "gemini":
		g, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		g.Temperature = float32(cfg.ScoringTemperature)
		g.MaxTokens = int32(cfg.ScoringMaxTokens)
		g.Timeout = cfg.ScoringTimeout
		base = g
	default:
		logger.Info().Msg("using offline mock qualifier")
		return ai.MockQualifier{}, nil
	}
	logger.Info().Str("provider", cfg.Provider()).Msg("scoring provider configured")

	return ai.RetryingQualifier{
		Next: base,
		Retrier: ai.Retrier{
			Attempts:  cfg.RetryAttempts,
			BaseDelay: cfg.RetryBaseDelay,
			Logger:    logger.With().Str("component", "scoring").Logger(),
		},
	}, nil
}

func buildNotifier(cfg config.Config, logger zerolog.Logger) notify.Notifier {
	out := notify.Multi{notify.LogNotifier{Logger: logger.With().Str("component", "notify").Logger()}}
	if cfg.SlackWebhookURL != "" {
		out = append(out, notify.SlackNotifier{WebhookURL: cfg.SlackWebhookURL})
	}
	if cfg.DiscordWebhookURL != "" {
		d, err := notify.NewDiscordNotifier(cfg.DiscordWebhookURL)
		if err != nil {
			logger.Warn().Err(err).Msg("discord notifications disabled")
		} else {
			out = append(out, d)
		}
	}
	return out
}
