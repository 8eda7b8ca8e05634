package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/hospsync/internal/api"
	"stealthcompany.com/hospsync/internal/config"
	"stealthcompany.com/hospsync/internal/metrics"
	"stealthcompany.com/hospsync/internal/orchestrator"
	"stealthcompany.com/hospsync/internal/remote"
	"stealthcompany.com/hospsync/internal/store"
	"stealthcompany.com/hospsync/pkg/zerolog_config"
)

func main() {
	cfg := config.Load()

	zerolog_config.SetAppPrefix("hospsync-syncd")
	if err := zerolog_config.StartupWithEnv(cfg.ElasticsearchURL, "logs"); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logging")
	}

	log.Info().Msg("Starting hospsync-syncd service")

	metrics.StartSystemMetrics(15 * time.Second)

	conn, err := remote.NewConnection(remote.ConnectionConfig{
		URL:      cfg.CouchbaseURL,
		Username: cfg.CouchbaseUsername,
		Password: cfg.CouchbasePassword,
		Bucket:   cfg.CouchbaseBucket,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Couchbase")
	}
	defer conn.Close()

	st := store.New(remote.NewCouchbaseStore(conn, cfg.PollInterval))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orchestrator.NewSignalHandler().HandleSignals(ctx, cancel)

	if err := st.SubscribeAll(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to open entity subscriptions")
	}
	defer st.Unsubscribe()

	srv := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: api.NewServer(st).Routes(),
	}

	go func() {
		log.Info().
			Str("port", cfg.APIPort).
			Msg("API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("API server failed")
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server shutdown failed")
	}

	log.Info().Msg("hospsync-syncd stopped")
}
