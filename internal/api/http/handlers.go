package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/vitralis/atelier-manager/internal/entity"
	"github.com/vitralis/atelier-manager/internal/middleware"
)

const defaultJWTTTL = 12 * time.Hour

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.loginLimiter.Allow(middleware.GetClientIP(r.Context())) {
		respondError(w, http.StatusTooManyRequests, "too many login attempts, please try again later")
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.ac.MasterPassword == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.ac.MasterPassword)) != 1 {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	ttl := s.ac.JWTTTL
	if ttl <= 0 {
		ttl = defaultJWTTTL
	}
	_, token, err := s.tokenAuth.Encode(map[string]any{
		"sub": "admin",
		"exp": time.Now().Add(ttl).Unix(),
	})
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "token encode failed",
			slog.String("err", err.Error()),
		)
		respondError(w, http.StatusInternalServerError, "cannot issue token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// periodOf reads the period query parameter, defaulting to month. Unknown
// values pass through: the engine resolves them to empty ranges.
func periodOf(r *http.Request) entity.Period {
	p := strings.TrimSpace(r.URL.Query().Get("period"))
	if p == "" {
		return entity.PeriodMonth
	}
	return entity.Period(p)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.analytics.GetDashboardSnapshot(r.Context()))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.analytics.GetAnalyticsSnapshot(r.Context(), periodOf(r)))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	points := s.analytics.GetRevenueTrend(r.Context(), periodOf(r))
	if points == nil {
		points = []entity.TrendPoint{}
	}
	respondJSON(w, http.StatusOK, points)
}

func (s *Server) handleGeography(w http.ResponseWriter, r *http.Request) {
	points := s.analytics.GetGeographicData(r.Context(), periodOf(r))
	if points == nil {
		points = []entity.GeoDataPoint{}
	}
	respondJSON(w, http.StatusOK, points)
}

func (s *Server) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	products := s.analytics.GetTopProducts(r.Context(), periodOf(r), limit)
	if products == nil {
		products = []entity.TopProduct{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleGetCurrency(w http.ResponseWriter, r *http.Request) {
	code, err := s.settings.DisplayCurrency(r.Context())
	if err != nil {
		respondError(w, http.StatusNotFound, "display currency is not configured")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"currencyCode": code})
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrencyCode string `json:"currencyCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if len(code) != 3 {
		respondError(w, http.StatusBadRequest, "currencyCode must be a three-letter code")
		return
	}
	if err := s.settings.SetDisplayCurrency(r.Context(), code); err != nil {
		slog.Default().ErrorContext(r.Context(), "set display currency failed",
			slog.String("err", err.Error()),
		)
		respondError(w, http.StatusInternalServerError, "cannot store display currency")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"currencyCode": code})
}
