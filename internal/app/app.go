package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/funtimes-replay/internal/api"
	"github.com/coreman2200/funtimes-replay/internal/config"
	diag "github.com/coreman2200/funtimes-replay/internal/diagnostics"
	"github.com/coreman2200/funtimes-replay/internal/play"
	"github.com/coreman2200/funtimes-replay/internal/render"
	"github.com/coreman2200/funtimes-replay/internal/ws"
)

// Server is a running replay: one engine, its websocket hub and the HTTP API.
type Server struct {
	Cfg    *config.Config
	Seq    *play.Sequence
	Engine *render.Engine
	Hub    *ws.Hub
	HTTP   *http.Server

	log zerolog.Logger
}

// LoadSequence reads cfg.Sequence when set, otherwise the embedded sample.
func LoadSequence(cfg *config.Config) (*play.Sequence, error) {
	if cfg.Sequence != "" {
		return play.Load(cfg.Sequence)
	}
	return play.LoadSample(cfg.Sample)
}

// EngineOptions maps configuration onto render.Options.
func EngineOptions(cfg *config.Config) render.Options {
	return render.Options{
		Presets:        cfg.Presets(),
		DefaultPreset:  cfg.Camera.DefaultPreset,
		Tuning:         cfg.Camera.Tuning,
		Offense:        cfg.Camera.Offense,
		Defense:        cfg.Camera.Defense,
		NearBallRadius: cfg.NearBallRadius,
		HighlightIDs:   cfg.HighlightIDs,
		Dark:           cfg.Dark,
	}
}

// New wires sequence, hub, engine and router. Nothing runs until Run.
func New(cfg *config.Config, log zerolog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	seq, err := LoadSequence(cfg)
	if err != nil {
		return nil, fmt.Errorf("load sequence: %w", err)
	}

	hub := ws.NewHub(cfg.BroadcastHz, log)
	opts := EngineOptions(cfg)
	opts.OnEvent = hub.PushEvent
	opts.Diag = hub.PushDiag
	eng, err := render.NewEngine(seq, opts, log, hub)
	if err != nil {
		return nil, err
	}
	presets := eng.Camera.Presets()
	hub.Bind(eng, presets)

	router := api.NewRouter(api.Deps{
		Engine:      eng,
		Seq:         seq,
		Presets:     presets,
		Hub:         hub,
		CORSOrigins: cfg.CORSOrigins,
		CommandRate: float64(cfg.FPS),
		Log:         log,
	})

	return &Server{
		Cfg:    cfg,
		Seq:    seq,
		Engine: eng,
		Hub:    hub,
		HTTP: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log.With().Str("component", "app").Logger(),
	}, nil
}

// Run drives the engine and serves HTTP until ctx is cancelled or either
// fails, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	s.Hub.PushDiag(diag.Diagnostic{
		Severity: diag.Info,
		Code:     diag.SequenceLoaded,
		Summary:  "Sequence loaded",
		Evidence: map[string]any{"frames": len(s.Seq.Frames), "duration": s.Seq.Duration(), "players": len(s.Seq.Players)},
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Engine.Run(ctx, s.Cfg.FPS)
	})
	g.Go(func() error {
		s.log.Info().Str("addr", s.HTTP.Addr).Int("fps", s.Cfg.FPS).Msg("HTTP server starting")
		if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.HTTP.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
