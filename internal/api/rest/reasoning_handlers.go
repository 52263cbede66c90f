package rest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/fortuna/augur/internal/reasoning"
	"github.com/gorilla/mux"
)

// ReasoningHandler exposes the reasoning transparency endpoints
type ReasoningHandler struct {
	reasoning *reasoning.Service
}

// NewReasoningHandler creates a new reasoning handler
func NewReasoningHandler(reasoningService *reasoning.Service) *ReasoningHandler {
	return &ReasoningHandler{reasoning: reasoningService}
}

// daysBackParam parses the days_back query parameter, clamped to [1,365].
func daysBackParam(r *http.Request, defaultDays int) int {
	days := defaultDays
	if daysStr := r.URL.Query().Get("days_back"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d >= 1 && d <= 365 {
			days = d
		}
	}
	return days
}

// GetMomentReasoning returns the reasoning history for a moment
func (h *ReasoningHandler) GetMomentReasoning(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	momentID := vars["momentID"]

	limit := 10 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l >= 1 && l <= 100 {
			limit = l
		}
	}

	results, err := h.reasoning.ReasoningByMoment(r.Context(), momentID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve reasoning data", err)
		return
	}
	if len(results) == 0 {
		respondError(w, http.StatusNotFound, "No reasoning found for moment "+momentID, nil)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// GetMomentExplanation renders the latest reasoning for a moment in plain
// English
func (h *ReasoningHandler) GetMomentExplanation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	momentID := vars["momentID"]

	results, err := h.reasoning.ReasoningByMoment(r.Context(), momentID, 1)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate explanation", err)
		return
	}
	if len(results) == 0 {
		respondError(w, http.StatusNotFound, "No reasoning found for moment "+momentID, nil)
		return
	}

	respondJSON(w, http.StatusOK, h.reasoning.HumanExplanation(&results[0]))
}

// SearchReasoning searches reasoning history with filters
func (h *ReasoningHandler) SearchReasoning(w http.ResponseWriter, r *http.Request) {
	var query reasoning.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.reasoning.Search(r.Context(), &query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to search reasoning data", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetPerformanceMetrics reports accuracy and calibration over a window
func (h *ReasoningHandler) GetPerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	days := daysBackParam(r, 30)
	dateTo := time.Now()
	dateFrom := dateTo.AddDate(0, 0, -days)

	metrics, err := h.reasoning.PerformanceMetricsFor(r.Context(), dateFrom, dateTo)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to calculate performance metrics", err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// GetFactorImportance ranks factor types by average absolute impact
func (h *ReasoningHandler) GetFactorImportance(w http.ResponseWriter, r *http.Request) {
	days := daysBackParam(r, 30)
	dateTo := time.Now()
	dateFrom := dateTo.AddDate(0, 0, -days)

	metrics, err := h.reasoning.PerformanceMetricsFor(r.Context(), dateFrom, dateTo)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get factor importance data", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"factor_importance": metrics.FactorImportanceRanking,
		"analysis_period": map[string]interface{}{
			"from": dateFrom.Format(time.RFC3339),
			"to":   dateTo.Format(time.RFC3339),
			"days": days,
		},
		"total_decisions": metrics.TotalDecisions,
	})
}

// GetDecisionsSummary aggregates recent decisions by type
func (h *ReasoningHandler) GetDecisionsSummary(w http.ResponseWriter, r *http.Request) {
	days := daysBackParam(r, 7)
	dateFrom := time.Now().AddDate(0, 0, -days)

	query := &reasoning.SearchQuery{
		DateFrom: &dateFrom,
		Limit:    1000,
	}

	result, err := h.reasoning.Search(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get decisions summary", err)
		return
	}

	decisionCounts := map[string]int{}
	confidenceByDecision := map[string][]float64{}
	for _, history := range result.Results {
		decision := history.ReasoningResult.Decision
		decisionCounts[decision]++
		confidenceByDecision[decision] = append(confidenceByDecision[decision], history.ReasoningResult.ConfidenceScore)
	}

	avgConfidence := map[string]float64{}
	for decision, confidences := range confidenceByDecision {
		total := 0.0
		for _, c := range confidences {
			total += c
		}
		avgConfidence[decision] = total / float64(len(confidences))
	}

	mostCommon := ""
	for decision, count := range decisionCounts {
		if mostCommon == "" || count > decisionCounts[mostCommon] {
			mostCommon = decision
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"period": map[string]interface{}{
			"days": days,
			"from": dateFrom.Format(time.RFC3339),
			"to":   time.Now().Format(time.RFC3339),
		},
		"total_decisions":                result.TotalCount,
		"decision_breakdown":             decisionCounts,
		"average_confidence_by_decision": avgConfidence,
		"most_common_decision":           mostCommon,
	})
}

// GetConfidenceDistribution buckets recent decisions by confidence score
func (h *ReasoningHandler) GetConfidenceDistribution(w http.ResponseWriter, r *http.Request) {
	days := daysBackParam(r, 30)
	dateFrom := time.Now().AddDate(0, 0, -days)

	query := &reasoning.SearchQuery{
		DateFrom: &dateFrom,
		Limit:    1000,
	}

	result, err := h.reasoning.Search(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get confidence distribution", err)
		return
	}

	buckets := map[string]int{
		"very_low":  0, // 0-0.3
		"low":       0, // 0.3-0.5
		"medium":    0, // 0.5-0.7
		"high":      0, // 0.7-0.9
		"very_high": 0, // 0.9-1.0
	}

	confidences := make([]float64, 0, len(result.Results))
	for _, history := range result.Results {
		confidence := history.ReasoningResult.ConfidenceScore
		confidences = append(confidences, confidence)

		switch {
		case confidence < 0.3:
			buckets["very_low"]++
		case confidence < 0.5:
			buckets["low"]++
		case confidence < 0.7:
			buckets["medium"]++
		case confidence < 0.9:
			buckets["high"]++
		default:
			buckets["very_high"]++
		}
	}

	avgConfidence := 0.0
	percentiles := map[string]float64{}
	if len(confidences) > 0 {
		total := 0.0
		for _, c := range confidences {
			total += c
		}
		avgConfidence = total / float64(len(confidences))

		sort.Float64s(confidences)
		percentiles["p25"] = confidences[len(confidences)/4]
		percentiles["p50"] = confidences[len(confidences)/2]
		percentiles["p75"] = confidences[3*len(confidences)/4]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"period": map[string]interface{}{
			"days": days,
			"from": dateFrom.Format(time.RFC3339),
			"to":   time.Now().Format(time.RFC3339),
		},
		"total_decisions":         len(confidences),
		"average_confidence":      avgConfidence,
		"confidence_distribution": buckets,
		"confidence_percentiles":  percentiles,
	})
}

// GetTemplates lists the active reasoning templates
func (h *ReasoningHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"templates": h.reasoning.Templates(),
	})
}

// RecordOutcome attaches an observed outcome to a stored reasoning record
func (h *ReasoningHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	var outcome reasoning.ReasoningOutcome
	if err := json.NewDecoder(r.Body).Decode(&outcome); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if outcome.ReasoningID == "" {
		respondError(w, http.StatusBadRequest, "Missing reasoning_id", nil)
		return
	}

	if err := h.reasoning.RecordOutcome(r.Context(), &outcome); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to record outcome", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Outcome recorded",
		"reasoning_id": outcome.ReasoningID,
	})
}
