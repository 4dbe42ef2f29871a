package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jeeyuni/clone-junglebook/internal/auth"
	"github.com/jeeyuni/clone-junglebook/internal/booking"
	"github.com/jeeyuni/clone-junglebook/internal/store"
)

// Server exposes the slot and reservation API over HTTP. All logic lives in
// the booking service; handlers only translate between the wire format and
// the core's values.
type Server struct {
	svc          *booking.Service
	store        store.ReservationStore
	github       *auth.GitHub
	log          *zerolog.Logger
	jwtSecret    []byte
	sessionTTL   time.Duration
	clientOrigin string
	metrics      bool

	reservePerMinute int
	reserveBurst     int
}

// Options configures the server beyond its collaborators.
type Options struct {
	JWTSecret         string
	SessionTTL        time.Duration
	ClientOrigin      string
	PrometheusEnabled bool
	ReservePerMinute  int
	ReserveBurst      int
}

// NewServer wires the HTTP surface.
func NewServer(svc *booking.Service, st store.ReservationStore, github *auth.GitHub, opts Options, logger *zerolog.Logger) *Server {
	return &Server{
		svc:          svc,
		store:        st,
		github:       github,
		log:          logger,
		jwtSecret:    []byte(opts.JWTSecret),
		sessionTTL:   opts.SessionTTL,
		clientOrigin: opts.ClientOrigin,
		metrics:      opts.PrometheusEnabled,

		reservePerMinute: opts.ReservePerMinute,
		reserveBurst:     opts.ReserveBurst,
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.cors)
	r.Use(auth.Middleware(s.jwtSecret))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if s.metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/auth/login", s.handleAuthLogin)
	r.Get("/auth/callback", s.handleAuthCallback)

	r.Route("/api", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/slots", s.handleSlots)
		r.Get("/export", s.handleExport)
		r.Post("/logout", s.handleLogout)
		r.With(RateLimit(s.reservePerMinute, s.reserveBurst)).
			Post("/reserve", s.handleReserve)
	})

	return r
}

// cors allows the browser client to call the API with credentials. Only the
// configured origin is admitted.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && origin == s.clientOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
