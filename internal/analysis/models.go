package analysis

import (
	"strings"
	"time"
)

// MomentType classifies the play captured by a collectible moment.
type MomentType string

const (
	MomentDunk         MomentType = "dunk"
	MomentThreePointer MomentType = "three_pointer"
	MomentAssist       MomentType = "assist"
	MomentSteal        MomentType = "steal"
	MomentBlock        MomentType = "block"
	MomentRebound      MomentType = "rebound"
	MomentGameWinner   MomentType = "game_winner"
	MomentMilestone    MomentType = "milestone"
)

// Position is a player's listed position
type Position string

const (
	PointGuard    Position = "PG"
	ShootingGuard Position = "SG"
	SmallForward  Position = "SF"
	PowerForward  Position = "PF"
	Center        Position = "C"
)

// NormalizePosition maps provider position strings ("Guard",
// "Forward-Center", "G-F") onto the canonical codes. Hyphenated listings
// keep the first position.
func NormalizePosition(raw string) Position {
	primary := raw
	if idx := strings.IndexByte(raw, '-'); idx >= 0 {
		primary = raw[:idx]
	}

	switch strings.ToUpper(strings.TrimSpace(primary)) {
	case "PG", "POINT GUARD":
		return PointGuard
	case "SG", "SHOOTING GUARD":
		return ShootingGuard
	case "SF", "SMALL FORWARD":
		return SmallForward
	case "PF", "POWER FORWARD":
		return PowerForward
	case "C", "CENTER":
		return Center
	case "G", "GUARD":
		return PointGuard
	case "F", "FORWARD":
		return SmallForward
	default:
		return Position(strings.TrimSpace(raw))
	}
}

// GameStats is a single game's box-score line for a player.
// Immutable once fetched from the stats provider.
type GameStats struct {
	GameID                 string    `json:"game_id"`
	PlayerID               string    `json:"player_id"`
	GameDate               time.Time `json:"game_date"`
	Opponent               string    `json:"opponent"`
	MinutesPlayed          float64   `json:"minutes_played"`
	Points                 int       `json:"points"`
	Rebounds               int       `json:"rebounds"`
	Assists                int       `json:"assists"`
	Steals                 int       `json:"steals"`
	Blocks                 int       `json:"blocks"`
	Turnovers              int       `json:"turnovers"`
	FieldGoalsMade         int       `json:"field_goals_made"`
	FieldGoalsAttempted    int       `json:"field_goals_attempted"`
	ThreePointersMade      int       `json:"three_pointers_made"`
	ThreePointersAttempted int       `json:"three_pointers_attempted"`
	FreeThrowsMade         int       `json:"free_throws_made"`
	FreeThrowsAttempted    int       `json:"free_throws_attempted"`
	PersonalFouls          int       `json:"personal_fouls"`
	PlusMinus              *int      `json:"plus_minus,omitempty"`
}

// FieldGoalPercentage returns FG% for the game (0 if no attempts)
func (g *GameStats) FieldGoalPercentage() float64 {
	if g.FieldGoalsAttempted == 0 {
		return 0
	}
	return float64(g.FieldGoalsMade) / float64(g.FieldGoalsAttempted)
}

// EfficiencyRating computes the basic efficiency stat line:
// positive box-score events minus missed shots and turnovers.
func (g *GameStats) EfficiencyRating() float64 {
	return float64(g.Points+g.Rebounds+g.Assists+g.Steals+g.Blocks) -
		float64(g.FieldGoalsAttempted-g.FieldGoalsMade) -
		float64(g.FreeThrowsAttempted-g.FreeThrowsMade) -
		float64(g.Turnovers)
}

// SeasonStats holds season-level per-game averages and advanced efficiency
// numbers for a player. Refreshed periodically by the stats provider.
type SeasonStats struct {
	PlayerID                string   `json:"player_id"`
	Season                  string   `json:"season"`
	Team                    string   `json:"team"`
	Position                Position `json:"position"`
	GamesPlayed             int      `json:"games_played"`
	GamesStarted            int      `json:"games_started"`
	MinutesPerGame          float64  `json:"minutes_per_game"`
	PointsPerGame           float64  `json:"points_per_game"`
	ReboundsPerGame         float64  `json:"rebounds_per_game"`
	AssistsPerGame          float64  `json:"assists_per_game"`
	StealsPerGame           float64  `json:"steals_per_game"`
	BlocksPerGame           float64  `json:"blocks_per_game"`
	TurnoversPerGame        float64  `json:"turnovers_per_game"`
	FieldGoalPercentage     float64  `json:"field_goal_percentage"`
	ThreePointPercentage    float64  `json:"three_point_percentage"`
	FreeThrowPercentage     float64  `json:"free_throw_percentage"`
	PlayerEfficiencyRating  float64  `json:"player_efficiency_rating"`
	TrueShootingPercentage  float64  `json:"true_shooting_percentage"`
	UsageRate               float64  `json:"usage_rate"`
}

// PlayerProfile holds biographical and career information for a player
type PlayerProfile struct {
	PlayerID     string   `json:"player_id"`
	Name         string   `json:"name"`
	Position     Position `json:"position"`
	Height       string   `json:"height"`
	Weight       int      `json:"weight"`
	YearsPro     int      `json:"years_pro"`
	College      string   `json:"college,omitempty"`
	CurrentTeam  string   `json:"current_team"`
	JerseyNumber int      `json:"jersey_number"`
}

// PerformanceMetrics is the analyzer's output: six independent scores in
// [0,100] for a player as of the evaluation date. Created fresh on every
// analysis call.
type PerformanceMetrics struct {
	PlayerID          string    `json:"player_id"`
	EvaluationDate    time.Time `json:"evaluation_date"`
	RecentForm        float64   `json:"recent_form_score"`
	SeasonConsistency float64   `json:"season_consistency"`
	ClutchPerformance float64   `json:"clutch_performance"`
	InjuryRisk        float64   `json:"injury_risk"`
	MarketMomentum    float64   `json:"market_momentum"`
	BreakoutPotential float64   `json:"breakout_potential"`
	VeteranStability  float64   `json:"veteran_stability"`
}

// GamePrediction is a projection for a player's next game
type GamePrediction struct {
	PlayerID           string  `json:"player_id"`
	PredictedPoints    float64 `json:"predicted_points"`
	PredictedRebounds  float64 `json:"predicted_rebounds"`
	PredictedAssists   float64 `json:"predicted_assists"`
	Confidence         float64 `json:"confidence"`
}

// PlayerComparison is the signed per-metric delta between two players.
// Positive deltas favor player 1; the injury-risk delta is inverted so a
// lower risk for player 1 reads as positive.
type PlayerComparison struct {
	Player1ID        string  `json:"player1_id"`
	Player2ID        string  `json:"player2_id"`
	RecentFormDiff   float64 `json:"recent_form_diff"`
	ConsistencyDiff  float64 `json:"consistency_diff"`
	ClutchDiff       float64 `json:"clutch_diff"`
	InjuryRiskDiff   float64 `json:"injury_risk_diff"`
	BreakoutDiff     float64 `json:"breakout_diff"`
	StabilityDiff    float64 `json:"stability_diff"`
	OverallAdvantage string  `json:"overall_advantage"` // "player1", "player2", "similar"
}

// FactorKind tags a valuation factor variant
type FactorKind string

const (
	FactorPlayerPerformance FactorKind = "player_performance"
	FactorScarcity          FactorKind = "scarcity"
	FactorMarketTrend       FactorKind = "market_trend"
	FactorSocialSentiment   FactorKind = "social_sentiment"
)

// ValuationFactor is one weighted contributor to a fair-value estimate.
// Kind selects which payload pointer is populated; the others are nil.
type ValuationFactor struct {
	Kind        FactorKind `json:"factor_type"`
	Weight      float64    `json:"weight"`      // [0,1], all four sum to 1.0
	Value       float64    `json:"value"`       // normalized [0,1]
	Impact      float64    `json:"impact"`      // percentage effect on fair value, [-100,100]
	Description string     `json:"description"`

	Performance *PerformancePayload `json:"performance,omitempty"`
	Scarcity    *ScarcityPayload    `json:"scarcity,omitempty"`
	MarketTrend *MarketTrendPayload `json:"market_trend,omitempty"`
	Social      *SocialPayload      `json:"social,omitempty"`
}

// PerformancePayload carries the sub-scores behind a performance factor
type PerformancePayload struct {
	RecentForm        float64 `json:"recent_games_performance"`
	SeasonConsistency float64 `json:"season_performance"`
	CareerTrajectory  float64 `json:"career_trajectory"`
	ClutchPerformance float64 `json:"clutch_performance"`
}

// ScarcityPayload carries the rarity components behind a scarcity factor
type ScarcityPayload struct {
	SerialNumberRarity float64 `json:"serial_number_rarity"`
	MomentTypeRarity   float64 `json:"moment_type_rarity"`
	PlayerMomentCount  int     `json:"player_moment_count"`
	TotalCirculation   int     `json:"total_circulation"`
}

// MarketTrendPayload carries momentum and sentiment behind a market factor
type MarketTrendPayload struct {
	PriceMomentum        float64 `json:"price_momentum"`   // [-100,100]
	VolumeTrend          float64 `json:"volume_trend"`     // [-100,100]
	MarketSentiment      float64 `json:"market_sentiment"` // [-1,1]
	ComparableSalesCount int     `json:"comparable_sales_count"`
}

// SocialPayload carries the social-signal inputs behind a sentiment factor
type SocialPayload struct {
	Mentions           int     `json:"social_mentions"`
	Sentiment          float64 `json:"sentiment_score"` // [-1,1]
	ViralScore         float64 `json:"viral_potential"` // [0,100]
	InfluencerMentions int     `json:"influencer_mentions"`
}

// AnalyzeMomentRequest identifies a moment to value
type AnalyzeMomentRequest struct {
	MomentID      string     `json:"moment_id"`
	PlayerID      string     `json:"player_id"`
	MomentType    MomentType `json:"moment_type"`
	GameDate      time.Time  `json:"game_date"`
	SerialNumber  int        `json:"serial_number"`
	CurrentPrice  float64    `json:"current_price"`
	MarketplaceID string     `json:"marketplace_id"`
}

// PricePoint is one historical price observation for a moment
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    int       `json:"volume"`
}

// ComparableSale is a recent sale of a similar moment
type ComparableSale struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// MarketData is the marketplace context for one moment
type MarketData struct {
	TotalMomentsForPlayer int              `json:"total_moments_for_player"`
	TotalCirculation      int              `json:"total_circulation"`
	PriceHistory          []PricePoint     `json:"price_history"`
	ComparableSales       []ComparableSale `json:"comparable_sales"`
	Volatility            float64          `json:"volatility"`
	LiquidityRisk         float64          `json:"liquidity_risk"`
}

// SocialSignal is the social-media context for a player. A missing signal
// is replaced with DefaultSocialSignal rather than failing the analysis.
type SocialSignal struct {
	Mentions           int     `json:"mentions"`
	Sentiment          float64 `json:"sentiment"`
	ViralScore         float64 `json:"viral_score"`
	InfluencerMentions int     `json:"influencer_mentions"`
}

// DefaultSocialSignal returns the documented fallback payload used when no
// social data is available for a player.
func DefaultSocialSignal() SocialSignal {
	return SocialSignal{
		Mentions:           100,
		Sentiment:          0.1,
		ViralScore:         30,
		InfluencerMentions: 5,
	}
}

// MomentValuation is the fair-value estimate for a moment
type MomentValuation struct {
	MomentID       string    `json:"moment_id"`
	FairValue      float64   `json:"fair_value"`
	Confidence     float64   `json:"confidence_score"` // [0,1]
	PriceRangeLow  float64   `json:"price_range_low"`
	PriceRangeHigh float64   `json:"price_range_high"`
	Recommendation string    `json:"recommendation"`
	AnalyzedAt     time.Time `json:"analysis_timestamp"`
}

// PlayerAnalysisContext summarizes the player inputs behind a valuation
type PlayerAnalysisContext struct {
	Metrics     PerformanceMetrics `json:"performance_metrics"`
	RecentForm  float64            `json:"recent_form"`
	Consistency float64            `json:"consistency"`
}

// MarketAnalysisContext summarizes the market inputs behind a valuation
type MarketAnalysisContext struct {
	CurrentPrice float64             `json:"current_price"`
	FairValue    float64             `json:"fair_value"`
	PriceRatio   float64             `json:"price_ratio"`
	Trend        *MarketTrendPayload `json:"market_trend,omitempty"`
}

// RiskAssessment captures the risk inputs carried alongside a valuation
type RiskAssessment struct {
	Confidence      float64 `json:"confidence"`
	PriceVolatility float64 `json:"price_volatility"`
	LiquidityRisk   float64 `json:"liquidity_risk"`
}

// AnalysisMetadata describes how and when an analysis was produced
type AnalysisMetadata struct {
	AnalyzedAt   time.Time `json:"analysis_timestamp"`
	ModelVersion string    `json:"model_version"`
	FactorCount  int       `json:"factors_count"`
}

// MomentAnalysisResult is the complete output of a moment valuation and the
// unit of exchange between the valuator and the reasoning layer.
type MomentAnalysisResult struct {
	MomentID        string                `json:"moment_id"`
	PlayerID        string                `json:"player_id"`
	Valuation       MomentValuation       `json:"valuation"`
	Factors         []ValuationFactor     `json:"factors"`
	PlayerAnalysis  PlayerAnalysisContext `json:"player_analysis"`
	MarketAnalysis  MarketAnalysisContext `json:"market_analysis"`
	RiskAssessment  RiskAssessment        `json:"risk_assessment"`
	Recommendations []string              `json:"recommendations"`
	Metadata        AnalysisMetadata      `json:"analysis_metadata"`
}
