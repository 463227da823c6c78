package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/coreman2200/funtimes-replay/internal/camera"
	"github.com/coreman2200/funtimes-replay/internal/play"
	"github.com/coreman2200/funtimes-replay/internal/ws"
)

// Deps are the pieces the router serves.
type Deps struct {
	Engine  ws.Engine
	Seq     *play.Sequence
	Presets []camera.Info
	Hub     *ws.Hub

	CORSOrigins []string
	// CommandRate caps POST /commands per second across all clients. 0 disables it.
	CommandRate float64
	Log         zerolog.Logger
}

// NewRouter creates the chi router with middleware, REST routes and the
// websocket endpoints.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware(d.Log))

	c := corslib.New(corslib.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	h := &Handler{eng: d.Engine, seq: d.Seq, presets: d.Presets}

	r.Get("/", h.Root)
	if d.Hub != nil {
		r.Get("/health", d.Hub.HandleHealth)
		// websockets stay outside the compressed group
		r.Get("/ws", d.Hub.HandleFramesWS)
		r.Get("/ws/diag", d.Hub.HandleDiagWS)
		r.Get("/ws/control", d.Hub.HandleControlWS)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Compress(5))

		r.Get("/sequence", h.GetSequence)
		r.Get("/state", h.GetState)
		r.Get("/presets", h.GetPresets)
		r.Get("/samples", h.GetSamples)
		r.Get("/openspace", h.GetOpenSpaceTable)
		r.Get("/openspace/{frame}", h.GetOpenSpace)

		r.Group(func(r chi.Router) {
			if d.CommandRate > 0 {
				r.Use(RateLimitMiddleware(d.CommandRate))
			}
			r.Post("/commands", h.PostCommand)
		})
	})
	return r
}

// TimingMiddleware logs each request with its status and duration.
func TimingMiddleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			ms := float64(time.Since(start).Microseconds()) / 1000.0
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Str("request_id", middleware.GetReqID(r.Context())).
				Float64("ms", ms).
				Msg("http")
		})
	}
}

// RateLimitMiddleware rejects requests beyond perSecond with 429.
func RateLimitMiddleware(perSecond float64) func(http.Handler) http.Handler {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(1))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many commands")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
