package reasoning

import (
	"time"
)

// ReasoningFactorType classifies a reasoning factor.
type ReasoningFactorType string

const (
	FactorTypePlayerPerformance   ReasoningFactorType = "player_performance"
	FactorTypeMarketTrend         ReasoningFactorType = "market_trend"
	FactorTypeScarcity            ReasoningFactorType = "scarcity"
	FactorTypeSocialSentiment     ReasoningFactorType = "social_sentiment"
	FactorTypeTechnicalAnalysis   ReasoningFactorType = "technical_analysis"
	FactorTypeFundamentalAnalysis ReasoningFactorType = "fundamental_analysis"
	FactorTypeRiskAssessment      ReasoningFactorType = "risk_assessment"
)

// ReasoningFactor is a single factor behind a decision, with enough
// supporting data to explain it on its own.
type ReasoningFactor struct {
	FactorType     ReasoningFactorType    `json:"factor_type"`
	Name           string                 `json:"name"`
	Weight         float64                `json:"weight"`
	Value          float64                `json:"value"`
	RawValue       *float64               `json:"raw_value,omitempty"`
	Impact         float64                `json:"impact"`
	Confidence     float64                `json:"confidence"`
	Description    string                 `json:"description"`
	SupportingData map[string]interface{} `json:"supporting_data"`
}

// PlayerPerformanceReasoning narrates the player side of a decision.
type PlayerPerformanceReasoning struct {
	RecentGamesAnalysis      string             `json:"recent_games_analysis"`
	SeasonPerformanceContext string             `json:"season_performance_context"`
	CareerTrajectory         string             `json:"career_trajectory"`
	ClutchPerformanceNote    string             `json:"clutch_performance_note"`
	InjuryStatus             string             `json:"injury_status"`
	TeamContext              string             `json:"team_context"`
	MatchupAnalysis          string             `json:"matchup_analysis"`
	StatisticalHighlights    []string           `json:"statistical_highlights"`
	PerformanceTrends        map[string]float64 `json:"performance_trends"`
}

// MarketContextReasoning narrates the market side of a decision.
type MarketContextReasoning struct {
	PriceTrendAnalysis     string   `json:"price_trend_analysis"`
	VolumeAnalysis         string   `json:"volume_analysis"`
	ComparableSalesContext string   `json:"comparable_sales_context"`
	MarketSentiment        string   `json:"market_sentiment"`
	LiquidityAssessment    string   `json:"liquidity_assessment"`
	ArbitrageOpportunities []string `json:"arbitrage_opportunities"`
	MarketInefficiencies   []string `json:"market_inefficiencies"`
	TimingFactors          []string `json:"timing_factors"`
}

// ScarcityReasoning narrates the rarity side of a decision.
type ScarcityReasoning struct {
	SerialNumberSignificance  string `json:"serial_number_significance"`
	MomentTypeRarity          string `json:"moment_type_rarity"`
	PlayerMomentAvailability  string `json:"player_moment_availability"`
	CirculationAnalysis       string `json:"circulation_analysis"`
	CollectorDemand           string `json:"collector_demand"`
	HistoricalScarcityPremium string `json:"historical_scarcity_premium"`
	FutureScarcityProjection  string `json:"future_scarcity_projection"`
}

// AIReasoningResult is the full reasoning record behind one decision.
type AIReasoningResult struct {
	MomentID          string                     `json:"moment_id"`
	Decision          string                     `json:"decision"`
	ConfidenceScore   float64                    `json:"confidence_score"`
	Factors           []ReasoningFactor          `json:"factors"`
	PrimaryReasoning  string                     `json:"primary_reasoning"`
	SupportingReasons []string                   `json:"supporting_reasons"`
	RiskFactors       []string                   `json:"risk_factors"`
	KeyStatistics     map[string]interface{}     `json:"key_statistics"`
	MarketContext     MarketContextReasoning     `json:"market_context"`
	PlayerAnalysis    PlayerPerformanceReasoning `json:"player_analysis"`
	ScarcityAnalysis  ScarcityReasoning          `json:"scarcity_analysis"`
	Timestamp         time.Time                  `json:"timestamp"`
	AnalysisVersion   string                     `json:"analysis_version"`
}

// ReasoningTemplate is a parameterized text template for a decision type.
type ReasoningTemplate struct {
	TemplateID        string   `json:"template_id"`
	DecisionType      string   `json:"decision_type"`
	TemplateText      string   `json:"template_text"`
	RequiredVariables []string `json:"required_variables"`
	OptionalVariables []string `json:"optional_variables"`
}

// ReasoningHistory is a stored reasoning record plus its eventual outcome.
type ReasoningHistory struct {
	ID               string                 `json:"id"`
	MomentID         string                 `json:"moment_id"`
	UserID           string                 `json:"user_id,omitempty"`
	ReasoningResult  AIReasoningResult      `json:"reasoning_result"`
	ActualOutcome    map[string]interface{} `json:"actual_outcome,omitempty"`
	OutcomeTimestamp *time.Time             `json:"outcome_timestamp,omitempty"`
	AccuracyScore    *float64               `json:"accuracy_score,omitempty"`
	LessonsLearned   []string               `json:"lessons_learned,omitempty"`
}

// ReasoningOutcome records how a stored decision actually played out.
type ReasoningOutcome struct {
	ReasoningID   string                 `json:"reasoning_id"`
	ActualOutcome map[string]interface{} `json:"actual_outcome"`
	AccuracyScore float64                `json:"accuracy_score"`
	RecordedAt    time.Time              `json:"recorded_at"`
}

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 1000
)

// SearchQuery filters reasoning history.
type SearchQuery struct {
	MomentIDs     []string              `json:"moment_ids,omitempty"`
	PlayerIDs     []string              `json:"player_ids,omitempty"`
	DecisionTypes []string              `json:"decision_types,omitempty"`
	DateFrom      *time.Time            `json:"date_from,omitempty"`
	DateTo        *time.Time            `json:"date_to,omitempty"`
	MinConfidence *float64              `json:"min_confidence,omitempty"`
	FactorTypes   []ReasoningFactorType `json:"factor_types,omitempty"`
	Keywords      []string              `json:"keywords,omitempty"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
}

// Normalize applies the default and maximum page size and floors the offset.
func (q *SearchQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = defaultSearchLimit
	}
	if q.Limit > maxSearchLimit {
		q.Limit = maxSearchLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// SearchAggregations summarizes the returned page of search results.
type SearchAggregations struct {
	DecisionDistribution   map[string]int `json:"decision_distribution"`
	AverageConfidence      float64        `json:"average_confidence"`
	FactorTypeDistribution map[string]int `json:"factor_type_distribution"`
	TotalResults           int            `json:"total_results"`
}

// SearchResult is one page of reasoning history with page-level aggregations.
type SearchResult struct {
	TotalCount   int                `json:"total_count"`
	Results      []ReasoningHistory `json:"results"`
	Aggregations SearchAggregations `json:"aggregations"`
}

// PerformanceMetrics reports how the reasoning system has been doing.
type PerformanceMetrics struct {
	TotalDecisions          int                `json:"total_decisions"`
	AccuracyRate            float64            `json:"accuracy_rate"`
	ConfidenceCalibration   float64            `json:"confidence_calibration"`
	FactorImportanceRanking map[string]float64 `json:"factor_importance_ranking"`
	CommonFailureModes      []string           `json:"common_failure_modes"`
	ImprovementSuggestions  []string           `json:"improvement_suggestions"`
}

// Explanation is the plain-English rendering of a reasoning result.
type Explanation struct {
	Summary                 string            `json:"summary"`
	DetailedExplanation     string            `json:"detailed_explanation"`
	KeyFactors              []string          `json:"key_factors"`
	SupportingStats         map[string]string `json:"supporting_stats"`
	MarketContext           string            `json:"market_context"`
	RiskAssessment          string            `json:"risk_assessment"`
	ConfidenceExplanation   string            `json:"confidence_explanation"`
	WhatCouldChangeDecision []string          `json:"what_could_change_decision"`
}
