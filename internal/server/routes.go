package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"typerace/internal/config"
	"typerace/internal/db"
	"typerace/internal/events"
	"typerace/internal/history"
	"typerace/internal/rooms"
	"typerace/internal/words"
	"typerace/internal/wshub"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	sweepInterval   = time.Minute
	sinkTimeout     = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func Run() error {
	appCfg := config.Load()
	setupLogging(appCfg)

	bank := words.Default(appCfg.WordCount)
	if appCfg.WordsFile != "" {
		loaded, err := words.LoadFile(appCfg.WordsFile, appCfg.WordCount)
		if err != nil {
			log.Error().Err(err).Str("file", appCfg.WordsFile).Msg("loading word bank failed, using built-in words")
		} else {
			bank = loaded
		}
	}

	bus := events.NewBus(appCfg.EventBuffer)
	registry := rooms.NewRegistry(rooms.Options{
		Words:           bank,
		Bus:             bus,
		DefaultDuration: appCfg.DefaultDuration,
		MaxDuration:     appCfg.MaxDuration,
		MaxWordCount:    appCfg.MaxWordCount,
		FinishedTTL:     appCfg.FinishedRoomTTL,
	})

	srv := &Server{
		Rooms:  registry,
		Hub:    wshub.NewHub(),
		Config: appCfg,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []history.Sink
	var closers []func() error

	// Optional database connection
	if appCfg.DatabaseURL != "" {
		database, err := db.Connect(appCfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("database unavailable, running without it")
		} else {
			if err := database.Migrate(); err != nil {
				log.Error().Err(err).Msg("migration failed")
			}
			srv.DB = database
			sinks = append(sinks, history.NewPostgresSink(database))
			closers = append(closers, database.Close)
		}
	} else {
		log.Info().Msg("DATABASE_URL not set, running without database")
	}

	if appCfg.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
		recent, err := history.NewRedisSink(pingCtx, appCfg.RedisURL)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("redis unavailable, running without it")
		} else {
			srv.Recent = recent
			sinks = append(sinks, recent)
			closers = append(closers, recent.Close)
			log.Info().Msg("connected to redis")
		}
	}

	if appCfg.NATSURL != "" {
		publisher, err := history.NewNATSSink(appCfg.NATSURL)
		if err != nil {
			log.Error().Err(err).Msg("nats unavailable, running without it")
		} else {
			sinks = append(sinks, publisher)
			closers = append(closers, publisher.Close)
			log.Info().Str("subject", history.MatchFinishedSubject).Msg("publishing finished matches to nats")
		}
	}

	go registry.RunSweeper(ctx, sweepInterval)

	recorder := history.NewRecorder(bus, sinkTimeout, sinks...)
	recorderDone := make(chan struct{})
	go func() {
		recorder.Run(ctx)
		close(recorderDone)
	}()

	httpSrv := &http.Server{
		Addr:              "0.0.0.0:" + appCfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Int("sinks", recorder.Sinks()).Msg("server listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}
	stop()

	// Hijacked websocket connections are not tracked by Shutdown.
	srv.Hub.CloseAll("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	<-recorderDone
	for _, c := range closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("closing backend")
		}
	}
	return serveErr
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWS)
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/rooms/{id}", s.handleRoomSummary)

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/players/{id}", s.handlePlayerStats)
		r.Get("/matches/recent", s.handleRecentMatches)
		r.Get("/matches/{id}", s.handleMatchRecap)
		r.Get("/matches/{id}/players/{player}", s.handleMatchPlayer)
	})
	return r
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
