package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"weather_syncer/internal/domain"
	"weather_syncer/internal/metrics"
)

type CityStore interface {
	ListActive(ctx context.Context) ([]domain.City, error)
	Get(ctx context.Context, id int64) (*domain.City, error)
}

type ForecastStore interface {
	GetByCityAndDate(ctx context.Context, cityID int64, date time.Time) ([]domain.ForecastRecord, error)
}

type SyncRunStore interface {
	List(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

type WatchlistStore interface {
	List(ctx context.Context) ([]domain.WatchlistItem, error)
	Upsert(ctx context.Context, cityID int64, label *string) (*domain.WatchlistItem, error)
	Delete(ctx context.Context, cityID int64) error
}

type Syncer interface {
	Run(ctx context.Context) (*domain.SyncOutcome, error)
}

const syncRunsLimit = 50

type Config struct {
	Port      int
	APIKey    string
	SyncRPS   float64
	SyncBurst int
}

type Server struct {
	cities    CityStore
	forecasts ForecastStore
	syncRuns  SyncRunStore
	watchlist WatchlistStore
	syncer    Syncer
	limiter   *rate.Limiter
	apiKey    string
	metrics   *metrics.Collector
	registry  *prometheus.Registry
	logger    *slog.Logger
	server    *http.Server
}

func NewServer(
	cfg Config,
	cities CityStore,
	forecasts ForecastStore,
	syncRuns SyncRunStore,
	watchlist WatchlistStore,
	syncer Syncer,
	collector *metrics.Collector,
	registry *prometheus.Registry,
	logger *slog.Logger,
) *Server {
	s := &Server{
		cities:    cities,
		forecasts: forecasts,
		syncRuns:  syncRuns,
		watchlist: watchlist,
		syncer:    syncer,
		limiter:   rate.NewLimiter(rate.Limit(cfg.SyncRPS), cfg.SyncBurst),
		apiKey:    cfg.APIKey,
		metrics:   collector,
		registry:  registry,
		logger:    logger,
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID, s.observe)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/cities", s.handleListCities).Methods(http.MethodGet)
	r.HandleFunc("/forecast", s.handleGetForecast).Methods(http.MethodGet)
	r.HandleFunc("/sync-runs", s.handleListSyncRuns).Methods(http.MethodGet)
	r.HandleFunc("/watchlist", s.handleListWatchlist).Methods(http.MethodGet)
	r.HandleFunc("/watchlist", s.handleUpsertWatchlist).Methods(http.MethodPost)
	r.HandleFunc("/watchlist/{cityId}", s.handleDeleteWatchlist).Methods(http.MethodDelete)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(s.requireAPIKey)
	admin.HandleFunc("/sync", s.handleTriggerSync).Methods(http.MethodPost)

	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return r
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := s.cities.ListActive(r.Context())
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "list cities", err)
		return
	}
	s.respondJSON(w, http.StatusOK, cities)
}

func (s *Server) handleGetForecast(w http.ResponseWriter, r *http.Request) {
	cityID, err := strconv.ParseInt(r.URL.Query().Get("cityId"), 10, 64)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "cityId must be an integer"})
		return
	}

	// Missing date means today's forecast.
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "date must be YYYY-MM-DD"})
			return
		}
	}

	city, err := s.cities.Get(r.Context(), cityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondJSON(w, http.StatusNotFound, errorBody{Error: "unknown city"})
			return
		}
		s.respondError(w, r, http.StatusInternalServerError, "get city", err)
		return
	}

	records, err := s.forecasts.GetByCityAndDate(r.Context(), cityID, date)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "get forecast", err)
		return
	}

	s.respondJSON(w, http.StatusOK, forecastResponse{
		City:      *city,
		Date:      date.Format("2006-01-02"),
		Forecasts: records,
	})
}

func (s *Server) handleListSyncRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.syncRuns.List(r.Context(), syncRunsLimit)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "list sync runs", err)
		return
	}
	s.respondJSON(w, http.StatusOK, runs)
}

func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	items, err := s.watchlist.List(r.Context())
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "list watchlist", err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

type watchlistRequest struct {
	CityID int64   `json:"cityId"`
	Label  *string `json:"label,omitempty"`
}

func (s *Server) handleUpsertWatchlist(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CityID == 0 {
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "body must carry a cityId"})
		return
	}

	if _, err := s.cities.Get(r.Context(), req.CityID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondJSON(w, http.StatusNotFound, errorBody{Error: "unknown city"})
			return
		}
		s.respondError(w, r, http.StatusInternalServerError, "get city", err)
		return
	}

	item, err := s.watchlist.Upsert(r.Context(), req.CityID, req.Label)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "upsert watchlist", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, item)
}

func (s *Server) handleDeleteWatchlist(w http.ResponseWriter, r *http.Request) {
	cityID, err := strconv.ParseInt(mux.Vars(r)["cityId"], 10, 64)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "cityId must be an integer"})
		return
	}

	if err := s.watchlist.Delete(r.Context(), cityID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondJSON(w, http.StatusNotFound, errorBody{Error: "city not on watchlist"})
			return
		}
		s.respondError(w, r, http.StatusInternalServerError, "delete watchlist", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		s.respondJSON(w, http.StatusTooManyRequests, errorBody{Error: "sync already requested, try again later"})
		return
	}

	outcome, err := s.syncer.Run(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) || errors.Is(err, domain.ErrMalformedFeed) {
			s.respondError(w, r, http.StatusBadGateway, "trigger sync", err)
			return
		}
		s.respondError(w, r, http.StatusInternalServerError, "trigger sync", err)
		return
	}
	s.respondJSON(w, http.StatusOK, outcome)
}

type errorBody struct {
	Error string `json:"error"`
}

type forecastResponse struct {
	City      domain.City             `json:"city"`
	Date      string                  `json:"date"`
	Forecasts []domain.ForecastRecord `json:"forecasts"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, op string, err error) {
	s.logger.Error(op, "error", err, "request_id", requestIDFrom(r.Context()))
	s.respondJSON(w, status, errorBody{Error: fmt.Sprintf("%s: %v", op, err)})
}
