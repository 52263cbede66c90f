package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/fortuna/augur/internal/analysis"
	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/ingest/nba"
	"github.com/fortuna/augur/internal/ingest/social"
	"github.com/fortuna/augur/internal/publisher"
	"github.com/fortuna/augur/internal/reasoning"
)

// Cache TTLs. Provider data ages at different rates; analysis output is
// kept short-lived so fresh game results show up quickly.
const (
	playerProfileTTL = 24 * time.Hour
	seasonStatsTTL   = 6 * time.Hour
	gameLogTTL       = time.Hour
	analysisTTL      = 30 * time.Minute
)

const (
	recentGamesWindow     = 10
	predictionGamesWindow = 5

	// League-average defensive rating, used when no opponent is known.
	neutralOpponentRating = 112.0

	DefaultMinConfidence = 0.7
	DefaultMinUpsidePct  = 15.0
)

// ErrPlayerDataUnavailable reports that the stats provider has no profile
// or season line for a player, so no analysis can be produced.
var ErrPlayerDataUnavailable = errors.New("player data unavailable")

// ScoutService orchestrates the full analysis pipeline: provider fetches,
// performance scoring, moment valuation, reasoning persistence, and event
// publication, with a redis cache in front of every expensive step.
type ScoutService struct {
	nba       *nba.Client
	social    *social.Client
	analyzer  *analysis.PerformanceAnalyzer
	valuator  *analysis.MomentValuator
	reasoning *reasoning.Service
	cache     *cache.RedisCache
	publisher *publisher.RedisStreamPublisher
	season    string
}

// NewScoutService creates a new scouting service
func NewScoutService(
	nbaClient *nba.Client,
	socialClient *social.Client,
	reasoningService *reasoning.Service,
	redisCache *cache.RedisCache,
	streamPublisher *publisher.RedisStreamPublisher,
	season string,
) *ScoutService {
	return &ScoutService{
		nba:       nbaClient,
		social:    socialClient,
		analyzer:  analysis.NewPerformanceAnalyzer(),
		valuator:  analysis.NewMomentValuator(),
		reasoning: reasoningService,
		cache:     redisCache,
		publisher: streamPublisher,
		season:    season,
	}
}

// PlayerPerformance computes the full performance metrics for a player,
// serving from cache when a recent analysis exists. An absent profile or
// season line yields ErrPlayerDataUnavailable rather than made-up scores.
func (s *ScoutService) PlayerPerformance(ctx context.Context, playerID string) (*analysis.PerformanceMetrics, error) {
	cacheKey := fmt.Sprintf("player_performance:%s", playerID)
	var cached analysis.PerformanceMetrics
	if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		log.Printf("[scout] cache read %s: %v", cacheKey, err)
	} else if ok {
		return &cached, nil
	}

	profile, err := s.playerProfile(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetching player info: %w", err)
	}

	seasonStats, err := s.seasonStats(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetching season stats: %w", err)
	}

	if profile == nil || seasonStats == nil {
		log.Printf("[scout] incomplete data for player %s", playerID)
		return nil, fmt.Errorf("player %s: %w", playerID, ErrPlayerDataUnavailable)
	}

	recentGames, err := s.gameLog(ctx, playerID, recentGamesWindow)
	if err != nil {
		return nil, fmt.Errorf("fetching game log: %w", err)
	}

	metrics := s.analyzer.AnalyzePlayerPerformance(profile, seasonStats, recentGames)

	if err := s.cache.SetJSON(ctx, cacheKey, metrics, analysisTTL); err != nil {
		log.Printf("[scout] cache write %s: %v", cacheKey, err)
	}

	return metrics, nil
}

// AnalyzeMoment values a single moment. Successful analyses are cached,
// persisted as reasoning records, and published to the analysis stream.
func (s *ScoutService) AnalyzeMoment(ctx context.Context, req *analysis.AnalyzeMomentRequest) (*analysis.MomentAnalysisResult, error) {
	cacheKey := fmt.Sprintf("moment_analysis:%s", req.MomentID)
	var cached analysis.MomentAnalysisResult
	if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		log.Printf("[scout] cache read %s: %v", cacheKey, err)
	} else if ok {
		return &cached, nil
	}

	performance, err := s.PlayerPerformance(ctx, req.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("analyzing moment %s: %w", req.MomentID, err)
	}

	market := s.marketData(ctx, req.MomentID)
	signal := s.socialSignal(ctx, req.PlayerID)

	result := s.valuator.AnalyzeMoment(req, performance, market, signal)

	if s.reasoning != nil {
		reasoningResult := s.reasoning.GenerateReasoning(result)
		if _, err := s.reasoning.StoreReasoning(ctx, reasoningResult, ""); err != nil {
			log.Printf("[scout] storing reasoning for moment %s: %v", req.MomentID, err)
		} else {
			log.Printf("[scout] ✓ generated reasoning for moment %s", req.MomentID)
		}
	}

	if err := s.cache.SetJSON(ctx, cacheKey, result, analysisTTL); err != nil {
		log.Printf("[scout] cache write %s: %v", cacheKey, err)
	}

	if err := s.publisher.PublishAnalysis(ctx, result); err != nil {
		log.Printf("[scout] publishing analysis for moment %s: %v", req.MomentID, err)
	}

	return result, nil
}

// AnalyzeMomentWithReasoning runs a standard analysis and additionally
// generates a reasoning record attributed to the requesting user. A failed
// store still returns the generated reasoning.
func (s *ScoutService) AnalyzeMomentWithReasoning(ctx context.Context, req *analysis.AnalyzeMomentRequest, userID string) (*analysis.MomentAnalysisResult, *reasoning.AIReasoningResult, error) {
	result, err := s.AnalyzeMoment(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	reasoningResult := s.reasoning.GenerateReasoning(result)
	if _, err := s.reasoning.StoreReasoning(ctx, reasoningResult, userID); err != nil {
		log.Printf("[scout] storing detailed reasoning for moment %s: %v", req.MomentID, err)
	} else if err := s.publisher.PublishDecision(ctx, reasoningResult); err != nil {
		log.Printf("[scout] publishing decision for moment %s: %v", req.MomentID, err)
	}

	return result, reasoningResult, nil
}

// BatchAnalyzeMoments analyzes the requests concurrently. A failed request
// is logged and skipped; results keep request order.
func (s *ScoutService) BatchAnalyzeMoments(ctx context.Context, requests []*analysis.AnalyzeMomentRequest) []*analysis.MomentAnalysisResult {
	results := make([]*analysis.MomentAnalysisResult, len(requests))

	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req *analysis.AnalyzeMomentRequest) {
			defer wg.Done()
			result, err := s.AnalyzeMoment(ctx, req)
			if err != nil {
				log.Printf("[scout] batch analysis for moment %s: %v", req.MomentID, err)
				return
			}
			results[i] = result
		}(i, req)
	}
	wg.Wait()

	valid := make([]*analysis.MomentAnalysisResult, 0, len(requests))
	for _, result := range results {
		if result != nil {
			valid = append(valid, result)
		}
	}
	return valid
}

// FindUndervaluedMoments analyzes the candidates and keeps the ones priced
// meaningfully below fair value. minUpsidePct is a percentage (15 = 15%).
func (s *ScoutService) FindUndervaluedMoments(ctx context.Context, requests []*analysis.AnalyzeMomentRequest, minConfidence, minUpsidePct float64) []*analysis.MomentAnalysisResult {
	results := s.BatchAnalyzeMoments(ctx, requests)
	undervalued := s.valuator.UndervaluedMoments(results, minConfidence, minUpsidePct/100.0)

	log.Printf("[scout] found %d undervalued moments out of %d analyzed", len(undervalued), len(results))

	return undervalued
}

// PlayerRecommendation bundles a performance analysis with a next-game
// projection and actionable recommendation text.
type PlayerRecommendation struct {
	PlayerID        string                       `json:"player_id"`
	Metrics         *analysis.PerformanceMetrics `json:"performance_metrics"`
	NextGame        *analysis.GamePrediction     `json:"next_game_prediction"`
	Recommendations []string                     `json:"recommendations"`
	AnalyzedAt      time.Time                    `json:"analysis_timestamp"`
}

// PlayerRecommendations produces the full recommendation report for a player.
func (s *ScoutService) PlayerRecommendations(ctx context.Context, playerID string) (*PlayerRecommendation, error) {
	metrics, err := s.PlayerPerformance(ctx, playerID)
	if err != nil {
		return nil, err
	}

	prediction, err := s.NextGamePrediction(ctx, playerID, neutralOpponentRating)
	if err != nil {
		return nil, err
	}

	return &PlayerRecommendation{
		PlayerID:        playerID,
		Metrics:         metrics,
		NextGame:        prediction,
		Recommendations: recommendationsFor(metrics),
		AnalyzedAt:      time.Now(),
	}, nil
}

// NextGamePrediction projects a player's next game against an opponent with
// the given defensive rating (pass <= 0 for a league-average opponent).
func (s *ScoutService) NextGamePrediction(ctx context.Context, playerID string, opponentRating float64) (*analysis.GamePrediction, error) {
	if opponentRating <= 0 {
		opponentRating = neutralOpponentRating
	}

	profile, err := s.playerProfile(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetching player info: %w", err)
	}
	seasonStats, err := s.seasonStats(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetching season stats: %w", err)
	}
	if profile == nil || seasonStats == nil {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrPlayerDataUnavailable)
	}

	recentGames, err := s.gameLog(ctx, playerID, predictionGamesWindow)
	if err != nil {
		return nil, fmt.Errorf("fetching game log: %w", err)
	}

	return s.analyzer.PredictNextGame(profile, seasonStats, recentGames, opponentRating), nil
}

func recommendationsFor(metrics *analysis.PerformanceMetrics) []string {
	recommendations := []string{}

	if metrics.RecentForm > 80 {
		recommendations = append(recommendations, "Player is in excellent recent form - consider buying moments")
	} else if metrics.RecentForm < 40 {
		recommendations = append(recommendations, "Player struggling recently - wait for improvement before buying")
	}

	if metrics.BreakoutPotential > 75 {
		recommendations = append(recommendations, "High breakout potential - good long-term investment candidate")
	}

	if metrics.InjuryRisk > 70 {
		recommendations = append(recommendations, "High injury risk - consider this in investment decisions")
	}

	if metrics.SeasonConsistency > 80 {
		recommendations = append(recommendations, "Very consistent performer - reliable investment")
	} else if metrics.SeasonConsistency < 40 {
		recommendations = append(recommendations, "Inconsistent performance - higher risk investment")
	}

	return recommendations
}

// TrendingPlayer is one entry in the trending-players report
type TrendingPlayer struct {
	PlayerID          string  `json:"player_id"`
	Name              string  `json:"name"`
	RecentForm        float64 `json:"recent_form_score"`
	BreakoutPotential float64 `json:"breakout_potential"`
	PointsPerGame     float64 `json:"points_per_game"`
}

// TrendingPlayers ranks the league's scoring leaders by recent form.
// Players the provider has no usable data for are skipped.
func (s *ScoutService) TrendingPlayers(ctx context.Context, limit int) ([]TrendingPlayer, error) {
	leaders, err := s.nba.LeagueLeaders(ctx, "PTS", s.season, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching league leaders: %w", err)
	}

	trending := make([]TrendingPlayer, 0, len(leaders))
	for _, leader := range leaders {
		metrics, err := s.PlayerPerformance(ctx, leader.PlayerID)
		if err != nil {
			log.Printf("[scout] skipping trending player %s: %v", leader.PlayerID, err)
			continue
		}
		trending = append(trending, TrendingPlayer{
			PlayerID:          leader.PlayerID,
			Name:              leader.PlayerName,
			RecentForm:        metrics.RecentForm,
			BreakoutPotential: metrics.BreakoutPotential,
			PointsPerGame:     leader.StatValue,
		})
	}

	sort.Slice(trending, func(i, j int) bool {
		return trending[i].RecentForm > trending[j].RecentForm
	})

	if len(trending) > limit {
		trending = trending[:limit]
	}
	return trending, nil
}

// LeagueLeaders returns the league's top players for a stat category.
func (s *ScoutService) LeagueLeaders(ctx context.Context, category string, limit int) ([]nba.LeagueLeader, error) {
	return s.nba.LeagueLeaders(ctx, category, s.season, limit)
}

// RefreshPlayerCache drops a player's cached analysis and recomputes it.
func (s *ScoutService) RefreshPlayerCache(ctx context.Context, playerID string) error {
	cacheKey := fmt.Sprintf("player_performance:%s", playerID)
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return fmt.Errorf("clearing cache for player %s: %w", playerID, err)
	}

	if _, err := s.PlayerPerformance(ctx, playerID); err != nil {
		return fmt.Errorf("refreshing player %s: %w", playerID, err)
	}
	return nil
}

// SearchPlayers finds active players by name substring.
func (s *ScoutService) SearchPlayers(ctx context.Context, query string) ([]nba.PlayerSummary, error) {
	return s.nba.SearchPlayers(ctx, query, s.season)
}

// MomentReasoning returns the reasoning history for a moment, newest first.
func (s *ScoutService) MomentReasoning(ctx context.Context, momentID string, limit int) ([]reasoning.AIReasoningResult, error) {
	return s.reasoning.ReasoningByMoment(ctx, momentID, limit)
}

// MomentExplanation renders the human-readable explanation of a moment's
// most recent reasoning record, or nil when none exists.
func (s *ScoutService) MomentExplanation(ctx context.Context, momentID string) (*reasoning.Explanation, error) {
	results, err := s.reasoning.ReasoningByMoment(ctx, momentID, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return s.reasoning.HumanExplanation(&results[0]), nil
}

// HealthStatus reports component-level health for the scouting service
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// HealthCheck probes the service's dependencies.
func (s *ScoutService) HealthCheck(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now(),
		Components: map[string]string{},
	}

	if err := s.cache.HealthCheck(ctx); err != nil {
		status.Status = "unhealthy"
		status.Components["redis"] = "disconnected"
	} else {
		status.Components["redis"] = "connected"
	}

	status.Components["nba_api"] = "connected"
	status.Components["performance_analyzer"] = "ready"
	status.Components["moment_valuator"] = "ready"

	return status
}

func (s *ScoutService) playerProfile(ctx context.Context, playerID string) (*analysis.PlayerProfile, error) {
	cacheKey := fmt.Sprintf("player_info:%s", playerID)
	var cached analysis.PlayerProfile
	if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		log.Printf("[scout] cache read %s: %v", cacheKey, err)
	} else if ok {
		return &cached, nil
	}

	profile, err := s.nba.PlayerInfo(ctx, playerID)
	if err != nil || profile == nil {
		return profile, err
	}

	if err := s.cache.SetJSON(ctx, cacheKey, profile, playerProfileTTL); err != nil {
		log.Printf("[scout] cache write %s: %v", cacheKey, err)
	}
	return profile, nil
}

func (s *ScoutService) seasonStats(ctx context.Context, playerID string) (*analysis.SeasonStats, error) {
	cacheKey := fmt.Sprintf("season_stats:%s:%s", playerID, s.season)
	var cached analysis.SeasonStats
	if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		log.Printf("[scout] cache read %s: %v", cacheKey, err)
	} else if ok {
		return &cached, nil
	}

	stats, err := s.nba.SeasonStats(ctx, playerID, s.season)
	if err != nil || stats == nil {
		return stats, err
	}

	if err := s.cache.SetJSON(ctx, cacheKey, stats, seasonStatsTTL); err != nil {
		log.Printf("[scout] cache write %s: %v", cacheKey, err)
	}
	return stats, nil
}

func (s *ScoutService) gameLog(ctx context.Context, playerID string, lastN int) ([]analysis.GameStats, error) {
	cacheKey := fmt.Sprintf("game_log:%s:%s:%d", playerID, s.season, lastN)
	var cached []analysis.GameStats
	if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		log.Printf("[scout] cache read %s: %v", cacheKey, err)
	} else if ok {
		return cached, nil
	}

	games, err := s.nba.GameLog(ctx, playerID, s.season, lastN)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, cacheKey, games, gameLogTTL); err != nil {
		log.Printf("[scout] cache write %s: %v", cacheKey, err)
	}
	return games, nil
}

func (s *ScoutService) socialSignal(ctx context.Context, playerID string) *analysis.SocialSignal {
	profile, err := s.playerProfile(ctx, playerID)
	if err != nil || profile == nil {
		signal := analysis.DefaultSocialSignal()
		return &signal
	}
	return s.social.PlayerSignal(ctx, profile.Name)
}

// marketData returns a synthetic marketplace snapshot.
// TODO: replace with real marketplace API data once the feed is wired up.
func (s *ScoutService) marketData(ctx context.Context, momentID string) *analysis.MarketData {
	now := time.Now()

	history := make([]analysis.PricePoint, 0, 10)
	for i := 10; i > 0; i-- {
		history = append(history, analysis.PricePoint{
			Timestamp: now.AddDate(0, 0, -i),
			Price:     100 + float64(i)*5,
			Volume:    10,
		})
	}

	return &analysis.MarketData{
		TotalMomentsForPlayer: 75,
		TotalCirculation:      2500,
		PriceHistory:          history,
		ComparableSales: []analysis.ComparableSale{
			{Price: 95, Timestamp: now.AddDate(0, 0, -1)},
			{Price: 105, Timestamp: now.AddDate(0, 0, -2)},
			{Price: 98, Timestamp: now.AddDate(0, 0, -3)},
		},
		Volatility:    0.15,
		LiquidityRisk: 0.25,
	}
}
