package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fortuna/augur/internal/reasoning"
	"github.com/fortuna/augur/internal/service"
	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, scout *service.ScoutService, reasoningService *reasoning.Service) *Server {
	handler := NewHandler(scout)
	reasoningHandler := NewReasoningHandler(reasoningService)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Moment analysis
	api.HandleFunc("/analyze/moment", handler.AnalyzeMoment).Methods("POST")
	api.HandleFunc("/analyze/moment/detailed", handler.AnalyzeMomentDetailed).Methods("POST")
	api.HandleFunc("/analyze/batch", handler.BatchAnalyzeMoments).Methods("POST")
	api.HandleFunc("/undervalued", handler.FindUndervaluedMoments).Methods("POST")

	// Players
	api.HandleFunc("/players/search", handler.SearchPlayers).Methods("GET")
	api.HandleFunc("/players/recommendations", handler.GetPlayerRecommendations).Methods("POST")
	api.HandleFunc("/players/{playerID}/performance", handler.GetPlayerPerformance).Methods("GET")
	api.HandleFunc("/players/{playerID}/prediction", handler.GetPlayerPrediction).Methods("GET")

	// League-wide views
	api.HandleFunc("/trending/players", handler.GetTrendingPlayers).Methods("GET")
	api.HandleFunc("/stats/league-leaders/{category}", handler.GetLeagueLeaders).Methods("GET")

	// Maintenance tasks
	api.HandleFunc("/tasks/refresh-player-cache/{playerID}", handler.RefreshPlayerCache).Methods("POST")

	// Reasoning and transparency
	api.HandleFunc("/reasoning/search", reasoningHandler.SearchReasoning).Methods("POST")
	api.HandleFunc("/reasoning/performance", reasoningHandler.GetPerformanceMetrics).Methods("GET")
	api.HandleFunc("/reasoning/factors/importance", reasoningHandler.GetFactorImportance).Methods("GET")
	api.HandleFunc("/reasoning/decisions/summary", reasoningHandler.GetDecisionsSummary).Methods("GET")
	api.HandleFunc("/reasoning/confidence/distribution", reasoningHandler.GetConfidenceDistribution).Methods("GET")
	api.HandleFunc("/reasoning/templates", reasoningHandler.GetTemplates).Methods("GET")
	api.HandleFunc("/reasoning/outcomes", reasoningHandler.RecordOutcome).Methods("POST")
	api.HandleFunc("/reasoning/moment/{momentID}", reasoningHandler.GetMomentReasoning).Methods("GET")
	api.HandleFunc("/reasoning/moment/{momentID}/explanation", reasoningHandler.GetMomentExplanation).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
