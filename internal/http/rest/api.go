package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bwise1/reportnow/config"
	deps "github.com/bwise1/reportnow/internal/debs"
	"github.com/bwise1/reportnow/internal/metrics"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/bwise1/reportnow/util"
	"github.com/bwise1/reportnow/util/storage"
	"github.com/bwise1/reportnow/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

const (
	defaultIdleTimeout    = time.Minute
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 60 * time.Second
	defaultShutdownPeriod = 30 * time.Second
)

type Handler func(w http.ResponseWriter, r *http.Request) *ServerResponse

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h(w, r)
	if resp == nil {
		return
	}
	if resp.Err != nil {
		writeErrorResponse(w, resp.Err, resp.Status, resp.Message)
		return
	}
	respByte, err := json.Marshal(resp.Data)
	if err != nil {
		writeErrorResponse(w, err, values.Error, "unable to marshal server response")
		return
	}
	writeJSONResponse(w, respByte, resp.StatusCode)
}

// ReportStore persists reports keyed by reportId.
type ReportStore interface {
	Create(ctx context.Context, report model.Report) (model.Report, error)
	GetByReportID(ctx context.Context, reportID string) (model.Report, error)
	UpdateStatus(ctx context.Context, reportID, status string) (model.Report, error)
	List(ctx context.Context, params model.ListReportsParams) ([]model.Report, int, error)
}

type ImageAnalyzer interface {
	Analyze(ctx context.Context, imageDataURL string) (model.ImageAnalysis, error)
}

type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

type Notifier interface {
	Dispatch(report model.Report) bool
}

type LiveFeed interface {
	Broadcast(event model.ReportEvent)
	HandleConnections(w http.ResponseWriter, r *http.Request)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type API struct {
	Server *http.Server
	Config *config.Config
	Deps   *deps.Dependencies

	Reports  ReportStore
	Images   storage.ImageStore
	Analyzer ImageAnalyzer
	Geocoder Geocoder
	Notifier Notifier
	Live     LiveFeed
	Health   HealthChecker
}

// New wires the API to the constructed dependencies. Optional integrations
// left nil in d stay nil here.
func New(cfg *config.Config, d *deps.Dependencies) *API {
	a := &API{
		Config:   cfg,
		Deps:     d,
		Analyzer: d.Analyzer,
		Notifier: d.Dispatcher,
		Live:     d.WebSocket,
	}
	if d.DB != nil {
		a.Reports = &ReportRepo{DB: d.DB.Pool()}
		a.Health = d.DB
	}
	if d.Images != nil {
		a.Images = d.Images
	}
	if d.Radar != nil {
		a.Geocoder = d.Radar
	}
	return a
}

func (api *API) Serve() error {
	api.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Config.Port),
		IdleTimeout:  defaultIdleTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		Handler:      api.setUpServerHandler(),
	}
	return api.Server.ListenAndServe()
}

func (api *API) setUpServerHandler() http.Handler {
	mux := chi.NewRouter()

	mux.Use(hlog.NewHandler(log.Logger))
	mux.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	mux.Use(metrics.Middleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   api.Config.CorsAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", values.HeaderRequestSource, values.HeaderRequestID},
		ExposedHeaders:   []string{values.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	mux.Use(RequestTracing)

	mux.Method(http.MethodGet, "/healthz", Handler(api.Healthz))
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/analyze-image", Handler(api.AnalyzeImage))
		r.Method(http.MethodPost, "/get-current-location", Handler(api.GetCurrentLocation))
		r.Method(http.MethodGet, "/incident-types", Handler(api.ListIncidentTypes))
		r.Mount("/reports", api.ReportRoutes())
	})

	return mux
}

func (api *API) Healthz(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	health := map[string]string{"status": "ok", "database": "up"}
	status := values.Success

	if api.Health == nil {
		health["database"] = "not configured"
	} else if err := api.Health.Ping(r.Context()); err != nil {
		log.Warn().Err(err).Msg("health check: database unreachable")
		health["status"] = "degraded"
		health["database"] = "down"
		status = values.Unavailable
	}

	return &ServerResponse{Status: status, StatusCode: util.StatusCode(status), Data: health}
}

// ListIncidentTypes returns the suggested categories for the report form.
func (api *API) ListIncidentTypes(_ http.ResponseWriter, _ *http.Request) *ServerResponse {
	return &ServerResponse{
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       map[string][]string{"incidentTypes": model.IncidentTypes},
	}
}

func (api *API) Shutdown(ctx context.Context) error {
	if api.Server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultShutdownPeriod)
	defer cancel()
	return api.Server.Shutdown(ctx)
}
