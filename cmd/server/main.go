package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/BradMoyetones/chat-backend-go/internal/adapters/http"
	"github.com/BradMoyetones/chat-backend-go/internal/adapters/media"
	wsignal "github.com/BradMoyetones/chat-backend-go/internal/adapters/signal"
	"github.com/BradMoyetones/chat-backend-go/internal/adapters/store"
	"github.com/BradMoyetones/chat-backend-go/internal/app"
	"github.com/BradMoyetones/chat-backend-go/internal/app/orch"
	"github.com/BradMoyetones/chat-backend-go/internal/app/sfu"
	"github.com/BradMoyetones/chat-backend-go/internal/config"
	"github.com/BradMoyetones/chat-backend-go/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var gateway core.PersistenceGateway
	if cfg.Database.DSN != "" {
		pg, err := store.NewPostgresGateway(cfg.Database.DSN)
		if err != nil {
			log.Error().Err(err).Msg("failed to connect database")
			os.Exit(1)
		}
		gateway = pg
	} else {
		log.Warn().Msg("no database dsn, using in-memory gateway")
		gateway = store.NewMemoryGateway()
	}

	engine, err := media.NewEngine(cfg.WebRTC)
	if err != nil {
		log.Error().Err(err).Msg("failed to start media engine")
		os.Exit(1)
	}
	defer engine.Close()

	sessions := app.NewSessionRegistry()
	presence := app.NewPresence()
	rooms := app.NewRoomManager()
	dispatch := app.NewDispatcher(sessions, presence, rooms, gateway)

	orchestrator := &orch.Orchestrator{
		Sessions: sessions,
		Presence: presence,
		Rooms:    rooms,
		Dispatch: dispatch,
		Media:    sfu.NewRoomManager(engine),
		Gateway:  gateway,
	}

	limiter := app.NewRateLimiter(cfg.TypingRate, time.Second)
	ctl := wsignal.NewController(orchestrator, cfg, limiter)

	r := router.SetupRouter(ctx, cfg, ctl, orchestrator)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("chat backend started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
