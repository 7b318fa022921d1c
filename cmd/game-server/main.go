package main

import (
	"context"
	"net/http"
	"time"

	"orevein/internal/config"
	"orevein/internal/events"
	"orevein/internal/logging"
	"orevein/internal/mining"
	"orevein/internal/store"
	httptransport "orevein/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if err := st.EnsureDefaultScenes(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("ensure default scenes failed")
	}

	mcfg := mining.NewConfig(cfg.Mining)
	hub := events.NewHub(200)
	coord := mining.NewCoordinator(mcfg, st, hub, log.With().Str("component", "mining").Logger())
	coord.StartSweeper(context.Background(), time.Duration(cfg.Server.SweepIntervalSecs)*time.Second)

	r := httptransport.NewRouter(st, cfg.Server, mcfg.Energy, coord, hub)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
