package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/fortuna/augur/internal/analysis"
	"github.com/fortuna/augur/internal/service"
	"github.com/gorilla/mux"
)

const maxBatchMoments = 50
const maxUndervaluedMoments = 100

// Handler contains dependencies for HTTP handlers
type Handler struct {
	scout *service.ScoutService
}

// NewHandler creates a new handler
func NewHandler(scout *service.ScoutService) *Handler {
	return &Handler{scout: scout}
}

// momentPayload is the wire form of a moment analysis request. Game dates
// arrive as YYYY-MM-DD strings.
type momentPayload struct {
	MomentID      string  `json:"moment_id"`
	PlayerID      string  `json:"player_id"`
	MomentType    string  `json:"moment_type"`
	GameDate      string  `json:"game_date"`
	SerialNumber  int     `json:"serial_number"`
	CurrentPrice  float64 `json:"current_price"`
	MarketplaceID string  `json:"marketplace_id"`
}

func (p *momentPayload) toRequest() (*analysis.AnalyzeMomentRequest, error) {
	if p.MomentID == "" || p.PlayerID == "" {
		return nil, fmt.Errorf("moment_id and player_id are required")
	}
	if p.SerialNumber < 1 {
		return nil, fmt.Errorf("serial_number must be at least 1")
	}
	if p.CurrentPrice <= 0 {
		return nil, fmt.Errorf("current_price must be positive")
	}

	gameDate, err := time.Parse("2006-01-02", p.GameDate)
	if err != nil {
		return nil, fmt.Errorf("invalid game_date %q (use YYYY-MM-DD)", p.GameDate)
	}

	return &analysis.AnalyzeMomentRequest{
		MomentID:      p.MomentID,
		PlayerID:      p.PlayerID,
		MomentType:    analysis.MomentType(p.MomentType),
		GameDate:      gameDate,
		SerialNumber:  p.SerialNumber,
		CurrentPrice:  p.CurrentPrice,
		MarketplaceID: p.MarketplaceID,
	}, nil
}

type batchPayload struct {
	Moments             []momentPayload `json:"moments"`
	MinConfidence       *float64        `json:"min_confidence,omitempty"`
	MinUpsidePercentage *float64        `json:"min_upside_percentage,omitempty"`
}

func (p *batchPayload) toRequests(max int) ([]*analysis.AnalyzeMomentRequest, error) {
	if len(p.Moments) == 0 {
		return nil, fmt.Errorf("moments list is empty")
	}
	if len(p.Moments) > max {
		return nil, fmt.Errorf("too many moments (max %d)", max)
	}

	requests := make([]*analysis.AnalyzeMomentRequest, 0, len(p.Moments))
	for i := range p.Moments {
		req, err := p.Moments[i].toRequest()
		if err != nil {
			return nil, fmt.Errorf("moment %d: %w", i, err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// HealthCheck reports component-level service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := h.scout.HealthCheck(r.Context())

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}

// AnalyzeMoment values a single moment
func (h *Handler) AnalyzeMoment(w http.ResponseWriter, r *http.Request) {
	var payload momentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := payload.toRequest()
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	result, err := h.scout.AnalyzeMoment(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrPlayerDataUnavailable) {
			respondError(w, http.StatusNotFound, "Could not analyze moment", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to analyze moment", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// AnalyzeMomentDetailed values a moment and returns the stored reasoning
// alongside the analysis
func (h *Handler) AnalyzeMomentDetailed(w http.ResponseWriter, r *http.Request) {
	var payload momentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := payload.toRequest()
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	userID := r.URL.Query().Get("user_id")

	result, reasoningResult, err := h.scout.AnalyzeMomentWithReasoning(r.Context(), req, userID)
	if err != nil {
		if errors.Is(err, service.ErrPlayerDataUnavailable) {
			respondError(w, http.StatusNotFound, "Could not analyze moment", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to analyze moment", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"analysis":  result,
		"reasoning": reasoningResult,
	})
}

// BatchAnalyzeMoments values up to 50 moments concurrently
func (h *Handler) BatchAnalyzeMoments(w http.ResponseWriter, r *http.Request) {
	var payload batchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	requests, err := payload.toRequests(maxBatchMoments)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	results := h.scout.BatchAnalyzeMoments(r.Context(), requests)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results":         results,
		"total_requested": len(requests),
		"total_analyzed":  len(results),
	})
}

// FindUndervaluedMoments analyzes candidates and returns the ones priced
// below fair value
func (h *Handler) FindUndervaluedMoments(w http.ResponseWriter, r *http.Request) {
	var payload batchPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	requests, err := payload.toRequests(maxUndervaluedMoments)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	minConfidence := service.DefaultMinConfidence
	if payload.MinConfidence != nil {
		minConfidence = *payload.MinConfidence
	}
	minUpside := service.DefaultMinUpsidePct
	if payload.MinUpsidePercentage != nil {
		minUpside = *payload.MinUpsidePercentage
	}

	undervalued := h.scout.FindUndervaluedMoments(r.Context(), requests, minConfidence, minUpside)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"undervalued_moments": undervalued,
		"total_analyzed":      len(requests),
		"total_undervalued":   len(undervalued),
		"criteria": map[string]float64{
			"min_confidence":        minConfidence,
			"min_upside_percentage": minUpside,
		},
	})
}

// GetPlayerPerformance returns the six-score performance analysis for a player
func (h *Handler) GetPlayerPerformance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playerID := vars["playerID"]

	metrics, err := h.scout.PlayerPerformance(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, service.ErrPlayerDataUnavailable) {
			respondError(w, http.StatusNotFound, "Player not found or no data available", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to analyze player", err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// GetPlayerPrediction projects a player's next game
func (h *Handler) GetPlayerPrediction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playerID := vars["playerID"]

	opponentRating := 0.0
	if ratingStr := r.URL.Query().Get("opponent_rating"); ratingStr != "" {
		rating, err := strconv.ParseFloat(ratingStr, 64)
		if err != nil || rating <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid opponent_rating", err)
			return
		}
		opponentRating = rating
	}

	prediction, err := h.scout.NextGamePrediction(r.Context(), playerID, opponentRating)
	if err != nil {
		if errors.Is(err, service.ErrPlayerDataUnavailable) {
			respondError(w, http.StatusNotFound, "Player not found or no data available", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to generate prediction", err)
		return
	}

	respondJSON(w, http.StatusOK, prediction)
}

// GetPlayerRecommendations returns the full recommendation report for a player
func (h *Handler) GetPlayerRecommendations(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if payload.PlayerID == "" {
		respondError(w, http.StatusBadRequest, "Missing player_id", nil)
		return
	}

	recommendation, err := h.scout.PlayerRecommendations(r.Context(), payload.PlayerID)
	if err != nil {
		if errors.Is(err, service.ErrPlayerDataUnavailable) {
			respondError(w, http.StatusNotFound, "Player not found or no data available", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to generate recommendations", err)
		return
	}

	respondJSON(w, http.StatusOK, recommendation)
}

// GetTrendingPlayers ranks scoring leaders by recent form
func (h *Handler) GetTrendingPlayers(w http.ResponseWriter, r *http.Request) {
	limit := 20 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	trending, err := h.scout.TrendingPlayers(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch trending players", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"trending_players": trending,
		"count":            len(trending),
	})
}

// SearchPlayers searches active players by name
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'q'", nil)
		return
	}

	players, err := h.scout.SearchPlayers(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to search players", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"players": players})
}

// GetLeagueLeaders returns the league leaders for a stat category
func (h *Handler) GetLeagueLeaders(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	category := vars["category"]

	limit := 50 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	leaders, err := h.scout.LeagueLeaders(r.Context(), category, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch league leaders", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"leaders":  leaders,
	})
}

// RefreshPlayerCache drops and rebuilds a player's cached analysis in the
// background
func (h *Handler) RefreshPlayerCache(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	playerID := vars["playerID"]

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if err := h.scout.RefreshPlayerCache(ctx, playerID); err != nil {
			log.Printf("[rest] cache refresh for player %s: %v", playerID, err)
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": fmt.Sprintf("Cache refresh initiated for player %s", playerID),
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
