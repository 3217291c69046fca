package handler

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"clinic-scheduling-api/internal/auth"
	"clinic-scheduling-api/internal/booking"
	"clinic-scheduling-api/internal/metrics"
	"clinic-scheduling-api/internal/middleware"
	"clinic-scheduling-api/internal/model"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Verify(raw string) (*auth.Claims, error)
}

type Booker interface {
	Book(ctx context.Context, req booking.Request) (*model.Appointment, error)
	Agenda(ctx context.Context, professionalID uint, from, to time.Time) ([]model.Appointment, error)
}

type Catalog interface {
	ListProfessionals(ctx context.Context) ([]model.Professional, error)
	ListServices(ctx context.Context) ([]model.Service, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Auth    Authenticator
	Booker  Booker
	Catalog Catalog
	Health  Pinger
}

type Config struct {
	Location       *time.Location
	TrustedProxies []netip.Prefix
	AllowedOrigins []string
	LoginPerMinute int
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Log            *zap.Logger
}

type Handler struct {
	Deps
	cfg Config
	log *zap.Logger
}

func New(d Deps, cfg Config) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LoginPerMinute <= 0 {
		cfg.LoginPerMinute = 10
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Deps: d, cfg: cfg, log: log}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.TrustedRealIP(h.cfg.TrustedProxies))
	r.Use(middleware.RequestLogger(h.log, h.cfg.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Healthz)
	if h.cfg.MetricsHandler != nil {
		r.Handle("/metrics", h.cfg.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.With(httprate.LimitByIP(h.cfg.LoginPerMinute, time.Minute)).Post("/login", h.Login)
		r.Get("/professionals", h.ListProfessionals)
		r.Get("/services", h.ListServices)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(h.Auth))
			r.Get("/appointments", h.ListAppointments)
			r.Post("/appointments", h.CreateAppointment)
		})
	})
	return r
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.Health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Health.Ping(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
