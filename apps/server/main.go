package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"phase10-tracker/apps/server/internal/auth"
	"phase10-tracker/apps/server/internal/config"
	"phase10-tracker/apps/server/internal/gateway"
	"phase10-tracker/apps/server/internal/store"
	"phase10-tracker/apps/server/internal/tracker"
	"phase10-tracker/phase10"
)

func main() {
	logger := logrus.New()
	log := logger.WithField("component", "server")

	if err := config.LoadDotEnv(".env"); err != nil {
		log.WithError(err).Fatal("failed to load .env")
	}
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	storeService, storeMode, err := store.New(store.Options{
		Mode:        cfg.StoreMode,
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSN,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer storeService.Close()

	game, err := phase10.NewGame(phase10.Config{
		MinPlayers: cfg.MinPlayers,
		MaxPlayers: cfg.MaxPlayers,
		FinalPhase: phase10.DefaultConfig().FinalPhase,
	})
	if err != nil {
		log.WithError(err).Fatal("invalid game config")
	}
	trk, err := tracker.New(context.Background(), game, storeService, logger)
	if err != nil {
		log.WithError(err).Fatal("failed to restore ledger")
	}

	pinHash := cfg.PINHash
	if pinHash == "" && cfg.PIN != "" {
		if pinHash, err = auth.HashPIN(cfg.PIN); err != nil {
			log.WithError(err).Fatal("invalid scorekeeper pin")
		}
	}
	authService, err := auth.NewManager(pinHash, cfg.SessionTTL)
	if err != nil {
		log.WithError(err).Fatal("failed to init auth manager")
	}
	defer authService.Close()

	gw := gateway.New(trk, logger)
	authHTTP := auth.NewHTTPHandler(authService)
	trackerHTTP := tracker.NewHTTPHandler(trk, authHTTP.RequireSession)

	r := chi.NewRouter()
	r.Get("/ws", gw.HandleWebSocket)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	authHTTP.RegisterRoutes(r)
	trackerHTTP.RegisterRoutes(r)

	log.WithFields(logrus.Fields{
		"store":        storeMode,
		"pin_required": authService.Enabled(),
		"addr":         cfg.Addr,
	}).Info("starting server")
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
