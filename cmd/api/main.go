package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/providers/image"
	"server/internal/session"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	editor, err := newEditor(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize image provider")
	}
	logger.Info().Str("provider", image.NormalizeProvider(cfg.ImageProvider)).Msg("image provider ready")

	store := session.NewStore(cfg.SessionTTL)
	controller := session.NewController(store, editor, logger, cfg.MaxImageBytes)

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}
	if resolver != nil {
		defer resolver.Close()
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	app := handlers.NewApp(controller, cfg, logger)
	router := httpapi.NewRouter(app, logger, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newEditor(ctx context.Context, cfg *infra.Config) (image.Editor, error) {
	switch image.NormalizeProvider(cfg.ImageProvider) {
	case image.ProviderQwen:
		return image.NewQwenEditor(image.QwenOptions{
			APIKey:  cfg.QwenAPIKey,
			Model:   cfg.QwenModel,
			BaseURL: cfg.QwenBaseURL,
		}), nil
	case image.ProviderSynthetic:
		return image.NewSyntheticEditor(), nil
	default:
		return image.NewGeminiEditor(ctx, image.GeminiOptions{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		})
	}
}
