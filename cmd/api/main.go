package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cartographix/internal/geo"
	"cartographix/internal/http/handlers"
	httpapi "cartographix/internal/http/httpapi"
	"cartographix/internal/infra"
	"cartographix/internal/jobs"
	"cartographix/internal/mapdata"
	"cartographix/internal/notify"
	"cartographix/internal/poster"
	"cartographix/internal/ratelimit"
	"cartographix/internal/storage"
)

// cleanupInterval paces the background sweep of stale jobs and artifacts.
const cleanupInterval = 10 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	files, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.OutputDir).Msg("failed to prepare output directory")
	}

	nominatim := geo.NewNominatimClient(geo.NominatimOptions{BaseURL: cfg.NominatimBaseURL})
	geocodeCache := geo.NewCache(nominatim, geo.DefaultCacheCapacity)

	gateway := mapdata.NewGateway(mapdata.GatewayOptions{
		Endpoints: cfg.OverpassEndpoints,
		Logger:    logger,
	})

	renderer, err := poster.NewRenderer(files, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize renderer")
	}

	mailer := notify.NewResendClient(notify.ResendOptions{
		APIKey:  cfg.ResendAPIKey,
		From:    cfg.EmailFrom,
		ReplyTo: cfg.EmailReplyTo,
		Logger:  logger,
	})

	store := jobs.NewStore(jobs.StoreOptions{
		MaxJobs: cfg.MaxJobs,
		Logger:  logger,
		RemoveArtifact: func(path string) {
			if err := files.Remove(path); err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("failed to remove artifact")
			}
		},
	})
	orch := jobs.NewOrchestrator(jobs.OrchestratorOptions{
		Store:         store,
		Geocoder:      geocodeCache,
		Fetcher:       gateway,
		Renderer:      renderer,
		Mailer:        mailer,
		MaxConcurrent: cfg.MaxConcurrentJobs,
		Timeout:       cfg.GenerationTimeout,
		Logger:        logger,
	})

	app := &handlers.App{
		Log:          logger,
		Config:       cfg,
		Store:        store,
		Orch:         orch,
		Geocoder:     nominatim,
		Files:        files,
		EmailLimiter: ratelimit.NewSlidingWindow(cfg.EmailRateLimit, cfg.EmailRateWindow),
		IPLimiter:    ratelimit.NewSlidingWindow(cfg.IPRateLimit, cfg.IPRateWindow),
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				store.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
