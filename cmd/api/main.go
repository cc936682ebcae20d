package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"server/internal/generation"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/providers/did"
	"server/internal/records"
)

func main() {
	// Optional .env for local runs.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Store handle: connect once, reuse for the process lifetime.
	ctx := context.Background()
	client, db, err := infra.NewMongo(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect store")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	// Generation provider: real client when credentials are present,
	// otherwise the in-process stub.
	var provider did.API
	if cfg.DIDAPIKey != "" {
		provider, err = did.NewClient(did.Options{
			APIKey:      cfg.DIDAPIKey,
			BaseURL:     cfg.DIDBaseURL,
			PresenterID: cfg.DIDPresenterID,
			VoiceID:     cfg.DIDVoiceID,
			Logger:      &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build provider client")
		}
	} else {
		logger.Warn().Msg("DID_API_KEY not set, using stub provider")
		provider = did.NewStub(5 * time.Second)
	}

	orchestrator := generation.NewOrchestrator(generation.Options{
		Provider:     provider,
		Logger:       &logger,
		PollInterval: cfg.PollInterval,
		MaxWait:      cfg.PollMaxWait,
	})
	resolver := records.NewResolver(records.Options{
		Store:             records.NewMongoStore(db),
		Logger:            &logger,
		DefaultCollection: cfg.DefaultCollection,
	})

	app := handlers.NewApp(logger, orchestrator, resolver)
	router := httpapi.NewRouter(app, cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
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
