package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"mafia-table/internal/ai"
	"mafia-table/internal/config"
	"mafia-table/internal/logging"
	"mafia-table/internal/store"
	"mafia-table/internal/stream"
	"mafia-table/internal/tts"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}

	st, err := openStore(cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()

	srv := &server{
		store:  st,
		hub:    stream.NewHub(cfg.Server.StreamBufferSize),
		driver: ai.NewDriver(ai.NewClient(cfg.AI), cfg.AI.Model),
		tts:    tts.NewClient(cfg.TTS),
		cfg:    cfg,
	}
	r := srv.router()
	logRoutes(r)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(httpServer.ListenAndServe()).Msg("server stopped")
}

func openStore(cfg config.ServerConfig) (store.Store, error) {
	if cfg.PostgresDSN == "" {
		log.Warn().Msg("POSTGRES_DSN not set, games will not survive a restart")
		return store.NewMemory(), nil
	}
	pg, err := store.NewPostgres(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pg.Ping(ctx); err != nil {
		return nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return pg, nil
}
