// Package server exposes tariffs, quotes, overrides and preferences over a
// JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/rental-quote/internal/observability"
	"github.com/iwvelando/rental-quote/internal/quote"
	"github.com/iwvelando/rental-quote/internal/session"
	"github.com/iwvelando/rental-quote/internal/summary"
	"github.com/iwvelando/rental-quote/internal/tariff"
	"github.com/iwvelando/rental-quote/pkg/constants"
	"github.com/iwvelando/rental-quote/pkg/money"
	"github.com/iwvelando/rental-quote/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Options wires the handler.
type Options struct {
	Catalog     tariff.Catalog
	Overrides   session.OverrideRepository
	Preferences session.PreferenceRepository
	Metrics     *observability.Metrics
	Registry    *prometheus.Registry
	Logger      *zap.Logger
	Version     string
	MaxBodySize int64
	RateLimit   RateLimitConfig
}

type handler struct {
	catalog     tariff.Catalog
	overrides   session.OverrideRepository
	preferences session.PreferenceRepository
	metrics     *observability.Metrics
	logger      *zap.Logger
	version     string
	maxBodySize int64

	// overrideMu serialises read-modify-write cycles on the override store.
	overrideMu sync.Mutex
}

// NewHandler constructs the HTTP handler that serves the quoting API.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	h := &handler{
		catalog:     opts.Catalog,
		overrides:   opts.Overrides,
		preferences: opts.Preferences,
		metrics:     opts.Metrics,
		logger:      logger,
		version:     version,
		maxBodySize: maxBodySize,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(observe(opts.Metrics))
	r.Use(recoverer(logger))

	r.Get("/healthz", h.handleHealth)
	if opts.Registry != nil {
		r.Handle("/metrics", observability.Handler(opts.Registry))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(opts.RateLimit))

		r.Get("/version", h.handleVersion)
		r.Get("/tariffs/{season}", h.handleTariffs)
		r.Get("/tariffs/{season}/export", h.handleTariffExport)
		r.Post("/quote", h.handleQuote)
		r.Get("/overrides", h.handleGetOverrides)
		r.Put("/overrides", h.handlePutOverrides)
		r.Delete("/overrides/{season}", h.handleDeleteOverride)
		r.Get("/preferences", h.handleGetPreferences)
		r.Put("/preferences", h.handlePutPreferences)
	})

	return r
}

// feedback collects the transient messages a session emits during a request.
type feedback struct {
	messages []string
}

func (f *feedback) Notify(msg string) { f.messages = append(f.messages, msg) }

func (f *feedback) last() string {
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

func (h *handler) newSession(ctx context.Context, notifier session.Notifier) *session.Session {
	catalog := h.catalog
	return session.New(ctx, session.Options{
		Catalog:     &catalog,
		Overrides:   h.overrides,
		Preferences: h.preferences,
		Notifier:    notifier,
		Metrics:     h.metrics,
		Logger:      h.logger,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

type tariffResponse struct {
	Season          string           `json:"season"`
	Builtin         tariff.Table     `json:"builtin"`
	Override        *tariff.Override `json:"override"`
	Effective       tariff.Table     `json:"effective"`
	DiscountOptions []int            `json:"discountOptions"`
}

func (h *handler) handleTariffs(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTariffs"
	season, ok := h.seasonParam(w, r, op)
	if !ok {
		return
	}

	s := h.newSession(r.Context(), nil)
	effective := s.EffectiveFor(season)
	h.writeJSON(w, http.StatusOK, tariffResponse{
		Season:          season,
		Builtin:         s.Builtin(season),
		Override:        s.Overrides().For(season),
		Effective:       effective,
		DiscountOptions: tariff.DiscountOptions(effective),
	})
}

func (h *handler) handleTariffExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTariffExport"
	season, ok := h.seasonParam(w, r, op)
	if !ok {
		return
	}

	data, err := yaml.Marshal(h.newSession(r.Context(), nil).EffectiveFor(season))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode tariff: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", season+"-tariff.yaml"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write tariff export", zap.String("op", op), zap.Error(err))
	}
}

type quoteRequest struct {
	Season          string `json:"season"`
	Guests          int    `json:"guests"`
	Nights          int    `json:"nights"`
	Price           string `json:"price,omitempty"`
	DiscountPercent *int   `json:"discountPercent,omitempty"`
	Plan            string `json:"plan,omitempty"`
}

type quoteResponse struct {
	Quote               quote.Quote    `json:"quote"`
	Lines               []summary.Line `json:"lines"`
	StayLine            string         `json:"stayLine"`
	Summary             string         `json:"summary"`
	SuggestedPriceCents money.Cents    `json:"suggestedPriceCents"`
	SuggestedDiscount   *int           `json:"suggestedDiscount"`
	DiscountOptions     []int          `json:"discountOptions"`
}

func (h *handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleQuote"

	var req quoteRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	if req.Season == "" {
		req.Season = constants.SeasonSummer
	}
	if err := validation.ValidateSeason(req.Season); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if req.Plan != "" {
		if err := validation.ValidatePlan(req.Plan); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
	}
	if req.DiscountPercent != nil {
		if err := validation.ValidateDiscountPercent(*req.DiscountPercent); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
	}

	s := h.newSession(r.Context(), nil)
	s.SetSeason(req.Season)
	s.SetGuests(strconv.Itoa(req.Guests))
	s.SetNights(strconv.Itoa(req.Nights))
	if req.Price != "" {
		s.SetPrice(req.Price)
	}
	if req.DiscountPercent != nil && *req.DiscountPercent != s.DiscountPercent() {
		s.SelectDiscount(*req.DiscountPercent)
	}
	if req.Plan != "" {
		s.SetPlan(req.Plan)
	}

	q, ok := s.Calculate()
	if !ok {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity,
			"price per night, nights and guests must all be positive", op)
		return
	}

	resp := quoteResponse{
		Quote:               q,
		Lines:               s.Lines(),
		StayLine:            summary.StayLine(q),
		Summary:             s.Summary(),
		SuggestedPriceCents: s.SuggestedPriceCents(),
		DiscountOptions:     s.DiscountOptions(),
	}
	if p, ok := s.SuggestedDiscount(); ok {
		resp.SuggestedDiscount = &p
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleGetOverrides(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.newSession(r.Context(), nil).Overrides())
}

func (h *handler) handlePutOverrides(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutOverrides"

	var overrides tariff.Overrides
	if !h.decodeJSON(w, r, &overrides, op) {
		return
	}
	if err := overrides.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.overrideMu.Lock()
	defer h.overrideMu.Unlock()

	notes := &feedback{}
	s := h.newSession(r.Context(), notes)
	if err := s.SaveOverrides(r.Context(), overrides); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, notes.last(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   notes.last(),
		"overrides": s.Overrides(),
	})
}

func (h *handler) handleDeleteOverride(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteOverride"
	season, ok := h.seasonParam(w, r, op)
	if !ok {
		return
	}

	h.overrideMu.Lock()
	defer h.overrideMu.Unlock()

	notes := &feedback{}
	s := h.newSession(r.Context(), notes)
	if err := s.ResetOverrides(r.Context(), season); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, notes.last(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   notes.last(),
		"overrides": s.Overrides(),
	})
}

type preferencesPayload struct {
	Theme                  string `json:"theme,omitempty"`
	InstallPromptDismissed *bool  `json:"installPromptDismissed,omitempty"`
}

func (h *handler) currentPreferences(ctx context.Context, s *session.Session) preferencesPayload {
	dismissed := h.preferences != nil && h.preferences.InstallPromptDismissed(ctx)
	return preferencesPayload{Theme: s.Theme(ctx), InstallPromptDismissed: &dismissed}
}

func (h *handler) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	s := h.newSession(r.Context(), nil)
	h.writeJSON(w, http.StatusOK, h.currentPreferences(r.Context(), s))
}

func (h *handler) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutPreferences"

	var req preferencesPayload
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	if req.Theme != "" {
		if err := validation.ValidateTheme(req.Theme); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
	}

	notes := &feedback{}
	s := h.newSession(r.Context(), notes)
	if req.Theme != "" {
		if err := s.SetTheme(r.Context(), req.Theme); err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, notes.last(), op)
			return
		}
	}
	if req.InstallPromptDismissed != nil && *req.InstallPromptDismissed {
		if err := s.DismissInstall(r.Context()); err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, notes.last(), op)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, h.currentPreferences(r.Context(), s))
}

func (h *handler) seasonParam(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	season := chi.URLParam(r, "season")
	if err := validation.ValidateSeason(season); err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return "", false
	}
	return season, true
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(w, status, payload, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to write JSON response", zap.Error(err))
	}
}
