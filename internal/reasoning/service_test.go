package reasoning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/augur/internal/analysis"
)

type fakeStore struct {
	savedReasoning *AIReasoningResult
	savedUserID    string
	savedOutcome   *ReasoningOutcome
	searchQuery    *SearchQuery
	searchTotal    int
	searchResults  []ReasoningHistory
	byMoment       []AIReasoningResult
	templates      []ReasoningTemplate
	templatesErr   error
	total          int
	avgConfidence  float64
	accurate       int
	importance     map[string]float64
	pairs          []ConfidenceAccuracyPair
}

func (f *fakeStore) SaveReasoning(_ context.Context, result *AIReasoningResult, userID string) (string, error) {
	f.savedReasoning = result
	f.savedUserID = userID
	return "reasoning-id-1", nil
}

func (f *fakeStore) ReasoningByMoment(_ context.Context, momentID string, limit int) ([]AIReasoningResult, error) {
	return f.byMoment, nil
}

func (f *fakeStore) SearchReasoning(_ context.Context, query *SearchQuery) (int, []ReasoningHistory, error) {
	f.searchQuery = query
	return f.searchTotal, f.searchResults, nil
}

func (f *fakeStore) SaveOutcome(_ context.Context, outcome *ReasoningOutcome) error {
	f.savedOutcome = outcome
	return nil
}

func (f *fakeStore) DecisionStats(_ context.Context, _, _ time.Time) (int, float64, error) {
	return f.total, f.avgConfidence, nil
}

func (f *fakeStore) AccurateDecisions(_ context.Context, _, _ time.Time) (int, error) {
	return f.accurate, nil
}

func (f *fakeStore) FactorImportance(_ context.Context, _, _ time.Time) (map[string]float64, error) {
	return f.importance, nil
}

func (f *fakeStore) ConfidenceAccuracyPairs(_ context.Context, _, _ time.Time) ([]ConfidenceAccuracyPair, error) {
	return f.pairs, nil
}

func (f *fakeStore) ActiveTemplates(_ context.Context) ([]ReasoningTemplate, error) {
	return f.templates, f.templatesErr
}

func testAnalysisResult(fairValue, currentPrice, confidence float64, recommendation string) *analysis.MomentAnalysisResult {
	return &analysis.MomentAnalysisResult{
		MomentID: "moment-1",
		PlayerID: "player-1",
		Valuation: analysis.MomentValuation{
			MomentID:       "moment-1",
			FairValue:      fairValue,
			Confidence:     confidence,
			Recommendation: recommendation,
		},
		Factors: []analysis.ValuationFactor{
			{
				Kind:        analysis.FactorPlayerPerformance,
				Weight:      0.35,
				Value:       0.75,
				Impact:      37.5,
				Description: "Player performance: Recent form 80.0, Consistency 70.0, Clutch 75.0",
				Performance: &analysis.PerformancePayload{RecentForm: 80, SeasonConsistency: 70, CareerTrajectory: 60, ClutchPerformance: 75},
			},
			{
				Kind:        analysis.FactorScarcity,
				Weight:      0.25,
				Value:       0.8,
				Impact:      45,
				Description: "Scarcity analysis: Serial #12 (98.8/100), dunk (85/100), Player moments: 10",
				Scarcity:    &analysis.ScarcityPayload{SerialNumberRarity: 98.8, MomentTypeRarity: 85, PlayerMomentCount: 10, TotalCirculation: 2000},
			},
			{
				Kind:        analysis.FactorMarketTrend,
				Weight:      0.20,
				Value:       0.3,
				Impact:      -24,
				Description: "Market trend: Price momentum -30.0%, Volume trend -25.0%, Market sentiment -0.20",
				MarketTrend: &analysis.MarketTrendPayload{PriceMomentum: -30, VolumeTrend: -25, MarketSentiment: -0.2, ComparableSalesCount: 4},
			},
			{
				Kind:        analysis.FactorSocialSentiment,
				Weight:      0.20,
				Value:       0.52,
				Impact:      1.6,
				Description: "Social sentiment: 100 mentions, sentiment +0.10, viral score 30",
				Social:      &analysis.SocialPayload{Mentions: 100, Sentiment: 0.1, ViralScore: 30, InfluencerMentions: 5},
			},
		},
		PlayerAnalysis: analysis.PlayerAnalysisContext{RecentForm: 80, Consistency: 70},
		MarketAnalysis: analysis.MarketAnalysisContext{
			CurrentPrice: currentPrice,
			FairValue:    fairValue,
			PriceRatio:   fairValue / currentPrice,
			Trend:        &analysis.MarketTrendPayload{PriceMomentum: -30, VolumeTrend: -25, MarketSentiment: -0.2, ComparableSalesCount: 4},
		},
		RiskAssessment: analysis.RiskAssessment{Confidence: confidence, PriceVolatility: 0.2, LiquidityRisk: 0.3},
	}
}

func TestFactorsFromAnalysisTranslation(t *testing.T) {
	s := NewService(&fakeStore{})

	factors := s.FactorsFromAnalysis(testAnalysisResult(130, 100, 0.75, "Strong Buy"))
	require.Len(t, factors, 4)

	assert.Equal(t, FactorTypePlayerPerformance, factors[0].FactorType)
	assert.Equal(t, "Player Performance Analysis", factors[0].Name)
	assert.Equal(t, 80.0, factors[0].SupportingData["recent_games_performance"])

	assert.Equal(t, FactorTypeScarcity, factors[1].FactorType)
	assert.Equal(t, "Scarcity and Rarity Analysis", factors[1].Name)
	assert.Equal(t, 2000, factors[1].SupportingData["total_circulation"])

	assert.Equal(t, FactorTypeMarketTrend, factors[2].FactorType)
	assert.Equal(t, "Market Trend Analysis", factors[2].Name)
	assert.Equal(t, 4, factors[2].SupportingData["comparable_sales_count"])

	assert.Equal(t, FactorTypeSocialSentiment, factors[3].FactorType)
	assert.Equal(t, "Social Sentiment Analysis", factors[3].Name)
	assert.Equal(t, 100, factors[3].SupportingData["social_mentions"])

	for _, factor := range factors {
		assert.Equal(t, 0.8, factor.Confidence)
		assert.NotEmpty(t, factor.Description)
	}
}

func TestFactorsFromAnalysisUnknownKind(t *testing.T) {
	s := NewService(&fakeStore{})

	result := &analysis.MomentAnalysisResult{
		Factors: []analysis.ValuationFactor{{Kind: analysis.FactorKind("custom"), Weight: 1, Value: 0.5}},
	}

	factors := s.FactorsFromAnalysis(result)
	require.Len(t, factors, 1)
	assert.Equal(t, FactorTypeFundamentalAnalysis, factors[0].FactorType)
	assert.Equal(t, "General Analysis Factor", factors[0].Name)
	assert.Empty(t, factors[0].SupportingData)
}

func TestDecisionMapping(t *testing.T) {
	cases := map[string]string{
		"Strong Buy":  "buy",
		"Buy":         "buy",
		"Hold":        "hold",
		"Sell":        "sell",
		"Strong Sell": "sell",
		"Avoid":       "skip",
	}
	for recommendation, want := range cases {
		assert.Equal(t, want, decisionFor(recommendation), recommendation)
	}
}

func TestGenerateReasoningStrongBuy(t *testing.T) {
	s := NewService(&fakeStore{})

	result := s.GenerateReasoning(testAnalysisResult(130, 100, 0.75, "Strong Buy"))

	assert.Equal(t, "moment-1", result.MomentID)
	assert.Equal(t, "buy", result.Decision)
	assert.Equal(t, 0.75, result.ConfidenceScore)
	assert.Equal(t, "1.0", result.AnalysisVersion)
	assert.Len(t, result.Factors, 4)

	// Fair value above 1.1x price takes the strong-buy wording and cites the
	// highest-impact factor
	assert.Contains(t, result.PrimaryReasoning, "Strong buy opportunity")
	assert.Contains(t, result.PrimaryReasoning, "Scarcity and Rarity Analysis")
	assert.Contains(t, result.PrimaryReasoning, "75% confidence")

	assert.Equal(t, 130.0, result.KeyStatistics["fair_value"])
	assert.Equal(t, -30.0, result.KeyStatistics["price_momentum"])
}

func TestGenerateReasoningModestBuy(t *testing.T) {
	s := NewService(&fakeStore{})

	result := s.GenerateReasoning(testAnalysisResult(107, 100, 0.75, "Buy"))
	assert.Contains(t, result.PrimaryReasoning, "slight upside potential")
}

func TestGenerateReasoningSellAndHold(t *testing.T) {
	s := NewService(&fakeStore{})

	sell := s.GenerateReasoning(testAnalysisResult(80, 100, 0.75, "Sell"))
	assert.Equal(t, "sell", sell.Decision)
	assert.Contains(t, sell.PrimaryReasoning, "overvaluing")

	hold := s.GenerateReasoning(testAnalysisResult(100, 100, 0.75, "Hold"))
	assert.Equal(t, "hold", hold.Decision)
	assert.Contains(t, hold.PrimaryReasoning, "Mixed signals")
}

func TestSupportingReasonsFilterAndOrder(t *testing.T) {
	factors := []ReasoningFactor{
		{Name: "Small", Impact: 3, Description: "negligible"},
		{Name: "Medium", Impact: -15, Description: "noticeable drag"},
		{Name: "Large", Impact: 40, Description: "dominant driver"},
	}

	reasons := supportingReasons(factors)

	require.Len(t, reasons, 2)
	assert.Contains(t, reasons[0], "Large: positive impact of +40.0%")
	assert.Contains(t, reasons[1], "Medium: negative impact of -15.0%")
}

func TestIdentifyRiskFactors(t *testing.T) {
	result := testAnalysisResult(130, 100, 0.5, "Buy")
	result.RiskAssessment.PriceVolatility = 0.4
	result.RiskAssessment.LiquidityRisk = 0.5

	factors := []ReasoningFactor{
		{FactorType: FactorTypeSocialSentiment, Confidence: 0.4},
		{FactorType: FactorTypeMarketTrend, Impact: -25},
	}

	risks := identifyRiskFactors(result, factors)

	require.Len(t, risks, 5)
	assert.Contains(t, risks[0], "Low confidence analysis (50%)")
	assert.Contains(t, risks[1], "High price volatility (40%)")
	assert.Contains(t, risks[2], "Liquidity concerns (50%)")
	assert.Contains(t, risks[3], "Social sentiment data limited")
	assert.Contains(t, risks[4], "Negative market trend")
}

func TestMarketContextHeadlines(t *testing.T) {
	undervalued := marketContext(testAnalysisResult(130, 100, 0.75, "Buy"))
	assert.Contains(t, undervalued.PriceTrendAnalysis, "undervalued by 30.0%")

	overvalued := marketContext(testAnalysisResult(80, 100, 0.75, "Sell"))
	assert.Contains(t, overvalued.PriceTrendAnalysis, "overvalued by 20.0%")

	fair := marketContext(testAnalysisResult(100, 100, 0.75, "Hold"))
	assert.Equal(t, "Current price is fairly valued relative to AI assessment", fair.PriceTrendAnalysis)

	// Volume trend of -25 reads as waning interest
	assert.Contains(t, undervalued.VolumeAnalysis, "waning interest")
}

func TestPlayerAnalysisNarrativeBands(t *testing.T) {
	strong := testAnalysisResult(130, 100, 0.75, "Buy")
	strong.PlayerAnalysis.RecentForm = 85
	strong.PlayerAnalysis.Consistency = 75
	narrative := playerAnalysis(strong)
	assert.Contains(t, narrative.RecentGamesAnalysis, "Excellent recent form (85.0/100)")
	assert.Contains(t, narrative.SeasonPerformanceContext, "Highly consistent")

	weak := testAnalysisResult(130, 100, 0.75, "Buy")
	weak.PlayerAnalysis.RecentForm = 40
	weak.PlayerAnalysis.Consistency = 45
	narrative = playerAnalysis(weak)
	assert.Contains(t, narrative.RecentGamesAnalysis, "Concerning recent form")
	assert.Contains(t, narrative.SeasonPerformanceContext, "Inconsistent season")
}

func TestStoreReasoningDelegates(t *testing.T) {
	store := &fakeStore{}
	s := NewService(store)

	result := s.GenerateReasoning(testAnalysisResult(130, 100, 0.75, "Strong Buy"))
	id, err := s.StoreReasoning(context.Background(), result, "user-7")

	require.NoError(t, err)
	assert.Equal(t, "reasoning-id-1", id)
	assert.Equal(t, result, store.savedReasoning)
	assert.Equal(t, "user-7", store.savedUserID)
}

func TestSearchNormalizesAndAggregates(t *testing.T) {
	store := &fakeStore{
		searchTotal: 12,
		searchResults: []ReasoningHistory{
			{ID: "1", ReasoningResult: AIReasoningResult{
				Decision:        "buy",
				ConfidenceScore: 0.8,
				Factors:         []ReasoningFactor{{FactorType: FactorTypePlayerPerformance}, {FactorType: FactorTypeScarcity}},
			}},
			{ID: "2", ReasoningResult: AIReasoningResult{
				Decision:        "buy",
				ConfidenceScore: 0.6,
				Factors:         []ReasoningFactor{{FactorType: FactorTypePlayerPerformance}},
			}},
			{ID: "3", ReasoningResult: AIReasoningResult{
				Decision:        "sell",
				ConfidenceScore: 0.7,
			}},
		},
	}
	s := NewService(store)

	result, err := s.Search(context.Background(), &SearchQuery{})
	require.NoError(t, err)

	assert.Equal(t, defaultSearchLimit, store.searchQuery.Limit)
	assert.Equal(t, 12, result.TotalCount)

	agg := result.Aggregations
	assert.Equal(t, 2, agg.DecisionDistribution["buy"])
	assert.Equal(t, 1, agg.DecisionDistribution["sell"])
	assert.InDelta(t, 0.7, agg.AverageConfidence, 1e-9)
	assert.Equal(t, 2, agg.FactorTypeDistribution["player_performance"])
	assert.Equal(t, 1, agg.FactorTypeDistribution["scarcity"])
	assert.Equal(t, 3, agg.TotalResults)
}

func TestSearchQueryNormalizeCapsLimit(t *testing.T) {
	q := &SearchQuery{Limit: 5000, Offset: -3}
	q.Normalize()
	assert.Equal(t, maxSearchLimit, q.Limit)
	assert.Equal(t, 0, q.Offset)
}

func TestHumanExplanation(t *testing.T) {
	s := NewService(&fakeStore{})

	reasoning := s.GenerateReasoning(testAnalysisResult(130, 100, 0.85, "Strong Buy"))
	explanation := s.HumanExplanation(reasoning)

	assert.Equal(t, "AI recommends to purchase this moment with 85% confidence.", explanation.Summary)
	assert.Equal(t, reasoning.PrimaryReasoning, explanation.DetailedExplanation)
	require.Len(t, explanation.KeyFactors, 3)
	assert.Contains(t, explanation.KeyFactors[0], "Scarcity and Rarity Analysis")

	assert.Equal(t, "$130.00", explanation.SupportingStats["Fair Value"])
	assert.Equal(t, "$100.00", explanation.SupportingStats["Current Price"])
	assert.Equal(t, "1.3", explanation.SupportingStats["Price Ratio"])
	assert.Contains(t, explanation.SupportingStats, "Confidence Score")

	assert.Equal(t, "High confidence due to strong supporting data and clear market signals.", explanation.ConfidenceExplanation)
	assert.Contains(t, explanation.WhatCouldChangeDecision, "Significant price increase above fair value")
	assert.Equal(t, reasoning.MarketContext.PriceTrendAnalysis, explanation.MarketContext)
}

func TestHumanExplanationNoRisks(t *testing.T) {
	s := NewService(&fakeStore{})

	explanation := s.HumanExplanation(&AIReasoningResult{Decision: "hold", ConfidenceScore: 0.65, KeyStatistics: map[string]interface{}{}})

	assert.Equal(t, "AI recommends to hold onto this moment with 65% confidence.", explanation.Summary)
	assert.Equal(t, "No significant risks identified", explanation.RiskAssessment)
	assert.Equal(t, "Moderate confidence with some uncertainty in market conditions or player performance.", explanation.ConfidenceExplanation)
	assert.Empty(t, explanation.WhatCouldChangeDecision)
}

func TestConfidenceCalibration(t *testing.T) {
	assert.Equal(t, 0.0, ConfidenceCalibration(nil))

	// Perfectly matching the expected bucket accuracies scores 1.0
	perfect := []ConfidenceAccuracyPair{
		{Confidence: 0.3, Accuracy: 0.25},
		{Confidence: 0.7, Accuracy: 0.65},
		{Confidence: 0.9, Accuracy: 0.9},
	}
	assert.InDelta(t, 1.0, ConfidenceCalibration(perfect), 1e-9)

	// Overconfident decisions are penalized
	overconfident := []ConfidenceAccuracyPair{
		{Confidence: 0.9, Accuracy: 0.3},
		{Confidence: 0.95, Accuracy: 0.4},
	}
	assert.InDelta(t, 1.0-0.55, ConfidenceCalibration(overconfident), 1e-9)
}

func TestPerformanceMetricsFor(t *testing.T) {
	store := &fakeStore{
		total:         20,
		avgConfidence: 0.72,
		accurate:      14,
		importance: map[string]float64{
			"scarcity":           40,
			"player_performance": 30,
			"market_trend":       25,
			"social_sentiment":   10,
		},
		pairs: []ConfidenceAccuracyPair{
			{Confidence: 0.9, Accuracy: 0.9},
		},
	}
	s := NewService(store)

	from := time.Now().Add(-30 * 24 * time.Hour)
	to := time.Now()
	metrics, err := s.PerformanceMetricsFor(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, 20, metrics.TotalDecisions)
	assert.InDelta(t, 0.7, metrics.AccuracyRate, 1e-9)
	assert.InDelta(t, 1.0, metrics.ConfidenceCalibration, 1e-9)
	assert.Equal(t, 40.0, metrics.FactorImportanceRanking["scarcity"])
	// A 4x importance spread triggers the balance suggestion
	assert.Contains(t, metrics.ImprovementSuggestions, "Balance factor weights to reduce over-reliance on single factors")
}

func TestFailureModes(t *testing.T) {
	assert.Empty(t, failureModes(nil))

	lowConfidence := []ReasoningHistory{
		{ReasoningResult: AIReasoningResult{ConfidenceScore: 0.3}},
		{ReasoningResult: AIReasoningResult{ConfidenceScore: 0.4}},
		{ReasoningResult: AIReasoningResult{ConfidenceScore: 0.9}},
	}
	assert.Contains(t, failureModes(lowConfidence), "High frequency of low-confidence decisions")

	skewed := []ReasoningHistory{
		{ReasoningResult: AIReasoningResult{
			ConfidenceScore: 0.8,
			Factors: []ReasoningFactor{
				{FactorType: FactorTypeScarcity},
				{FactorType: FactorTypeScarcity},
				{FactorType: FactorTypeScarcity},
				{FactorType: FactorTypeMarketTrend},
			},
		}},
	}
	assert.Contains(t, failureModes(skewed), "Over-reliance on scarcity factors")
}

func TestImprovementSuggestionsDefault(t *testing.T) {
	suggestions := improvementSuggestions(0.8, 0.9, map[string]float64{"scarcity": 30, "market_trend": 25})
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Performance is good - continue monitoring and fine-tuning", suggestions[0])
}

func TestLoadTemplatesFallsBackToDefaults(t *testing.T) {
	store := &fakeStore{templatesErr: assert.AnError}
	s := NewService(store)

	err := s.LoadTemplates(context.Background())
	require.Error(t, err)

	templates := s.Templates()
	require.Len(t, templates, 2)
	assert.Equal(t, "buy_strong_performance", templates[0].TemplateID)
	assert.Equal(t, "buy_undervalued", templates[1].TemplateID)
}

func TestLoadTemplatesReplacesDefaults(t *testing.T) {
	store := &fakeStore{templates: []ReasoningTemplate{
		{TemplateID: "sell_overheated", DecisionType: "sell", TemplateText: "Price overheated at {price}"},
	}}
	s := NewService(store)

	require.NoError(t, s.LoadTemplates(context.Background()))

	templates := s.Templates()
	require.Len(t, templates, 1)
	assert.Equal(t, "sell_overheated", templates[0].TemplateID)
}

func TestRecordOutcomeStampsTime(t *testing.T) {
	store := &fakeStore{}
	s := NewService(store)

	outcome := &ReasoningOutcome{ReasoningID: "reasoning-id-1", AccuracyScore: 0.9}
	require.NoError(t, s.RecordOutcome(context.Background(), outcome))

	require.NotNil(t, store.savedOutcome)
	assert.False(t, store.savedOutcome.RecordedAt.IsZero())
}
