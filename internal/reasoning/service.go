package reasoning

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fortuna/augur/internal/analysis"
)

const analysisVersion = "1.0"

// Store is the persistence surface the reasoning service needs.
type Store interface {
	SaveReasoning(ctx context.Context, result *AIReasoningResult, userID string) (string, error)
	ReasoningByMoment(ctx context.Context, momentID string, limit int) ([]AIReasoningResult, error)
	SearchReasoning(ctx context.Context, query *SearchQuery) (int, []ReasoningHistory, error)
	SaveOutcome(ctx context.Context, outcome *ReasoningOutcome) error
	DecisionStats(ctx context.Context, from, to time.Time) (total int, avgConfidence float64, err error)
	AccurateDecisions(ctx context.Context, from, to time.Time) (int, error)
	FactorImportance(ctx context.Context, from, to time.Time) (map[string]float64, error)
	ConfidenceAccuracyPairs(ctx context.Context, from, to time.Time) ([]ConfidenceAccuracyPair, error)
	ActiveTemplates(ctx context.Context) ([]ReasoningTemplate, error)
}

// ConfidenceAccuracyPair joins a decision's stated confidence with the
// accuracy score its recorded outcome earned.
type ConfidenceAccuracyPair struct {
	Confidence float64
	Accuracy   float64
}

// Service generates, stores and explains decision reasoning.
type Service struct {
	store     Store
	templates map[string]ReasoningTemplate
}

func NewService(store Store) *Service {
	return &Service{
		store:     store,
		templates: defaultTemplates(),
	}
}

// LoadTemplates replaces the built-in templates with the active set from the
// store. On failure the built-in templates stay in place.
func (s *Service) LoadTemplates(ctx context.Context) error {
	templates, err := s.store.ActiveTemplates(ctx)
	if err != nil {
		log.Printf("[reasoning] loading templates failed, keeping defaults: %v", err)
		return fmt.Errorf("loading reasoning templates: %w", err)
	}

	loaded := make(map[string]ReasoningTemplate, len(templates))
	for _, t := range templates {
		loaded[t.TemplateID] = t
	}
	if len(loaded) > 0 {
		s.templates = loaded
	}
	log.Printf("[reasoning] loaded %d reasoning templates", len(s.templates))
	return nil
}

// Templates returns the currently loaded reasoning templates.
func (s *Service) Templates() []ReasoningTemplate {
	templates := make([]ReasoningTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].TemplateID < templates[j].TemplateID })
	return templates
}

func defaultTemplates() map[string]ReasoningTemplate {
	return map[string]ReasoningTemplate{
		"buy_strong_performance": {
			TemplateID:   "buy_strong_performance",
			DecisionType: "buy",
			TemplateText: "Player {player_name} just scored {points} points with {rebounds} rebounds, showing {performance_trend} performance. " +
				"Current price of ${current_price} is {price_assessment} compared to fair value of ${fair_value}. {additional_factors}",
			RequiredVariables: []string{"player_name", "points", "rebounds", "performance_trend", "current_price", "price_assessment", "fair_value"},
			OptionalVariables: []string{"additional_factors", "risk_note"},
		},
		"buy_undervalued": {
			TemplateID:   "buy_undervalued",
			DecisionType: "buy",
			TemplateText: "Moment appears undervalued at ${current_price} vs fair value of ${fair_value} ({discount_percentage}% discount). " +
				"{scarcity_factor} and {market_context}. Confidence: {confidence_level}%",
			RequiredVariables: []string{"current_price", "fair_value", "discount_percentage", "scarcity_factor", "market_context", "confidence_level"},
			OptionalVariables: []string{"risk_factors"},
		},
	}
}

// FactorsFromAnalysis translates valuation factors into reasoning factors
// with named supporting data.
func (s *Service) FactorsFromAnalysis(result *analysis.MomentAnalysisResult) []ReasoningFactor {
	factors := make([]ReasoningFactor, 0, len(result.Factors))
	for _, factor := range result.Factors {
		factors = append(factors, translateFactor(factor))
	}
	return factors
}

func translateFactor(factor analysis.ValuationFactor) ReasoningFactor {
	var (
		factorType ReasoningFactorType
		name       string
		supporting map[string]interface{}
	)

	switch {
	case factor.Performance != nil:
		factorType = FactorTypePlayerPerformance
		name = "Player Performance Analysis"
		supporting = map[string]interface{}{
			"recent_games_performance": factor.Performance.RecentForm,
			"season_performance":       factor.Performance.SeasonConsistency,
			"career_trajectory":        factor.Performance.CareerTrajectory,
			"clutch_performance":       factor.Performance.ClutchPerformance,
		}
	case factor.Scarcity != nil:
		factorType = FactorTypeScarcity
		name = "Scarcity and Rarity Analysis"
		supporting = map[string]interface{}{
			"serial_number_rarity": factor.Scarcity.SerialNumberRarity,
			"moment_type_rarity":   factor.Scarcity.MomentTypeRarity,
			"player_moment_count":  factor.Scarcity.PlayerMomentCount,
			"total_circulation":    factor.Scarcity.TotalCirculation,
		}
	case factor.MarketTrend != nil:
		factorType = FactorTypeMarketTrend
		name = "Market Trend Analysis"
		supporting = map[string]interface{}{
			"price_momentum":         factor.MarketTrend.PriceMomentum,
			"volume_trend":           factor.MarketTrend.VolumeTrend,
			"market_sentiment":       factor.MarketTrend.MarketSentiment,
			"comparable_sales_count": factor.MarketTrend.ComparableSalesCount,
		}
	case factor.Social != nil:
		factorType = FactorTypeSocialSentiment
		name = "Social Sentiment Analysis"
		supporting = map[string]interface{}{
			"social_mentions":     factor.Social.Mentions,
			"sentiment_score":     factor.Social.Sentiment,
			"viral_potential":     factor.Social.ViralScore,
			"influencer_mentions": factor.Social.InfluencerMentions,
		}
	default:
		factorType = FactorTypeFundamentalAnalysis
		name = "General Analysis Factor"
		supporting = map[string]interface{}{}
	}

	return ReasoningFactor{
		FactorType:     factorType,
		Name:           name,
		Weight:         factor.Weight,
		Value:          factor.Value,
		Impact:         factor.Impact,
		Confidence:     0.8,
		Description:    factor.Description,
		SupportingData: supporting,
	}
}

// GenerateReasoning builds the complete reasoning record for an analysis
// result: translated factors, decision, narratives and key statistics.
func (s *Service) GenerateReasoning(result *analysis.MomentAnalysisResult) *AIReasoningResult {
	factors := s.FactorsFromAnalysis(result)
	decision := decisionFor(result.Valuation.Recommendation)

	return &AIReasoningResult{
		MomentID:          result.MomentID,
		Decision:          decision,
		ConfidenceScore:   result.Valuation.Confidence,
		Factors:           factors,
		PrimaryReasoning:  s.primaryReasoning(result, decision, factors),
		SupportingReasons: supportingReasons(factors),
		RiskFactors:       identifyRiskFactors(result, factors),
		KeyStatistics:     keyStatistics(result),
		MarketContext:     marketContext(result),
		PlayerAnalysis:    playerAnalysis(result),
		ScarcityAnalysis:  scarcityAnalysis(),
		Timestamp:         time.Now(),
		AnalysisVersion:   analysisVersion,
	}
}

// decisionFor maps a valuation recommendation to a discrete decision
func decisionFor(recommendation string) string {
	lower := strings.ToLower(recommendation)
	switch {
	case strings.Contains(lower, "buy"):
		return "buy"
	case strings.Contains(lower, "sell"):
		return "sell"
	case strings.Contains(lower, "hold"):
		return "hold"
	default:
		return "skip"
	}
}

func topFactorName(factors []ReasoningFactor, fallback string) string {
	if len(factors) == 0 {
		return fallback
	}
	top := factors[0]
	for _, f := range factors[1:] {
		if math.Abs(f.Impact) > math.Abs(top.Impact) {
			top = f
		}
	}
	return top.Name
}

func (s *Service) primaryReasoning(result *analysis.MomentAnalysisResult, decision string, factors []ReasoningFactor) string {
	currentPrice := result.MarketAnalysis.CurrentPrice
	fairValue := result.Valuation.FairValue
	confidence := result.Valuation.Confidence

	switch decision {
	case "buy":
		if fairValue > currentPrice*1.1 {
			return fmt.Sprintf("Strong buy opportunity: AI values this moment at $%.2f, significantly above current price of $%.2f. Primary driver: %s with %.0f%% confidence.",
				fairValue, currentPrice, topFactorName(factors, "Multiple factors"), confidence*100)
		}
		return fmt.Sprintf("Buy recommendation: Moment appears fairly valued with slight upside potential. Current price $%.2f vs fair value $%.2f. Key factor: %s.",
			currentPrice, fairValue, topFactorName(factors, "Analysis factors"))
	case "sell":
		return fmt.Sprintf("Sell recommendation: Current price of $%.2f exceeds fair value of $%.2f. Market appears to be overvaluing this moment. Primary concern: %s.",
			currentPrice, fairValue, topFactorName(factors, "Valuation metrics"))
	case "hold":
		return fmt.Sprintf("Hold recommendation: Mixed signals with current price $%.2f near fair value $%.2f. Waiting for clearer market direction. Key consideration: %s.",
			currentPrice, fairValue, topFactorName(factors, "Market uncertainty"))
	default:
		return fmt.Sprintf("Skip recommendation: Insufficient opportunity or high risk. Current price $%.2f vs fair value $%.2f with %.0f%% confidence. Primary reason: %s.",
			currentPrice, fairValue, confidence*100, topFactorName(factors, "Risk assessment"))
	}
}

// supportingReasons lists the top factors by impact magnitude, keeping only
// those that moved the decision by more than 5%.
func supportingReasons(factors []ReasoningFactor) []string {
	sorted := make([]ReasoningFactor, len(factors))
	copy(sorted, factors)
	sort.Slice(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Impact) > math.Abs(sorted[j].Impact)
	})

	if len(sorted) > 5 {
		sorted = sorted[:5]
	}

	reasons := []string{}
	for _, factor := range sorted {
		if math.Abs(factor.Impact) <= 5 {
			continue
		}
		direction := "positive"
		if factor.Impact < 0 {
			direction = "negative"
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s impact of %+.1f%% - %s",
			factor.Name, direction, factor.Impact, factor.Description))
	}
	return reasons
}

func identifyRiskFactors(result *analysis.MomentAnalysisResult, factors []ReasoningFactor) []string {
	risks := []string{}

	if result.Valuation.Confidence < 0.6 {
		risks = append(risks, fmt.Sprintf("Low confidence analysis (%.0f%%) - limited data or conflicting signals",
			result.Valuation.Confidence*100))
	}

	if result.RiskAssessment.PriceVolatility > 0.3 {
		risks = append(risks, fmt.Sprintf("High price volatility (%.0f%%) - price may fluctuate significantly",
			result.RiskAssessment.PriceVolatility*100))
	}

	if result.RiskAssessment.LiquidityRisk > 0.4 {
		risks = append(risks, fmt.Sprintf("Liquidity concerns (%.0f%%) - may be difficult to sell quickly",
			result.RiskAssessment.LiquidityRisk*100))
	}

	for _, factor := range factors {
		if factor.FactorType == FactorTypeSocialSentiment && factor.Confidence < 0.5 {
			risks = append(risks, "Social sentiment data limited - sentiment analysis may be unreliable")
		} else if factor.FactorType == FactorTypeMarketTrend && factor.Impact < -20 {
			risks = append(risks, "Negative market trend - broader market conditions unfavorable")
		}
	}

	return risks
}

func keyStatistics(result *analysis.MomentAnalysisResult) map[string]interface{} {
	stats := map[string]interface{}{
		"current_price":      result.MarketAnalysis.CurrentPrice,
		"fair_value":         result.Valuation.FairValue,
		"price_ratio":        result.MarketAnalysis.PriceRatio,
		"confidence_score":   result.Valuation.Confidence,
		"recent_form":        result.PlayerAnalysis.RecentForm,
		"season_consistency": result.PlayerAnalysis.Consistency,
	}

	if trend := result.MarketAnalysis.Trend; trend != nil {
		stats["price_momentum"] = trend.PriceMomentum
		stats["volume_trend"] = trend.VolumeTrend
	}

	return stats
}

func marketContext(result *analysis.MomentAnalysisResult) MarketContextReasoning {
	priceRatio := result.MarketAnalysis.PriceRatio

	var priceTrend string
	switch {
	case priceRatio > 1.1:
		priceTrend = fmt.Sprintf("Current price appears undervalued by %.1f%%", (priceRatio-1)*100)
	case priceRatio < 0.9:
		priceTrend = fmt.Sprintf("Current price appears overvalued by %.1f%%", (1-priceRatio)*100)
	default:
		priceTrend = "Current price is fairly valued relative to AI assessment"
	}

	var volumeTrend float64
	if result.MarketAnalysis.Trend != nil {
		volumeTrend = result.MarketAnalysis.Trend.VolumeTrend
	}

	var volumeAnalysis string
	switch {
	case volumeTrend > 20:
		volumeAnalysis = fmt.Sprintf("Strong volume increase (%+.1f%%) indicates growing interest", volumeTrend)
	case volumeTrend < -20:
		volumeAnalysis = fmt.Sprintf("Volume decline (%+.1f%%) suggests waning interest", volumeTrend)
	default:
		volumeAnalysis = "Volume trends are stable"
	}

	return MarketContextReasoning{
		PriceTrendAnalysis:     priceTrend,
		VolumeAnalysis:         volumeAnalysis,
		ComparableSalesContext: "Based on recent comparable sales analysis",
		MarketSentiment:        "Market sentiment analysis incorporated",
		LiquidityAssessment:    "Liquidity risk assessed based on trading volume",
		ArbitrageOpportunities: []string{},
		MarketInefficiencies:   []string{},
		TimingFactors:          []string{"Real-time market data", "Recent performance updates"},
	}
}

func playerAnalysis(result *analysis.MomentAnalysisResult) PlayerPerformanceReasoning {
	recentForm := result.PlayerAnalysis.RecentForm
	consistency := result.PlayerAnalysis.Consistency

	var recentAnalysis string
	switch {
	case recentForm > 70:
		recentAnalysis = fmt.Sprintf("Excellent recent form (%.1f/100) with strong performances", recentForm)
	case recentForm > 50:
		recentAnalysis = fmt.Sprintf("Good recent form (%.1f/100) showing positive trends", recentForm)
	default:
		recentAnalysis = fmt.Sprintf("Concerning recent form (%.1f/100) with declining performance", recentForm)
	}

	var seasonAnalysis string
	switch {
	case consistency > 70:
		seasonAnalysis = fmt.Sprintf("Highly consistent season performance (%.1f/100)", consistency)
	case consistency > 50:
		seasonAnalysis = fmt.Sprintf("Moderately consistent season (%.1f/100)", consistency)
	default:
		seasonAnalysis = fmt.Sprintf("Inconsistent season performance (%.1f/100)", consistency)
	}

	return PlayerPerformanceReasoning{
		RecentGamesAnalysis:      recentAnalysis,
		SeasonPerformanceContext: seasonAnalysis,
		CareerTrajectory:         "Career trajectory analysis based on historical data",
		ClutchPerformanceNote:    "Clutch performance metrics incorporated",
		InjuryStatus:             "No current injury concerns identified",
		TeamContext:              "Team performance context considered",
		MatchupAnalysis:          "Recent matchup performance analyzed",
		StatisticalHighlights:    []string{},
		PerformanceTrends:        map[string]float64{},
	}
}

func scarcityAnalysis() ScarcityReasoning {
	return ScarcityReasoning{
		SerialNumberSignificance:  "Serial number rarity assessed relative to total circulation",
		MomentTypeRarity:          "Moment type rarity based on historical distribution",
		PlayerMomentAvailability:  "Player moment availability in current market",
		CirculationAnalysis:       "Total circulation and market supply analysis",
		CollectorDemand:           "Collector demand patterns analyzed",
		HistoricalScarcityPremium: "Historical scarcity premiums considered",
		FutureScarcityProjection:  "Future scarcity trends projected",
	}
}

// StoreReasoning persists a reasoning record and returns its new id.
func (s *Service) StoreReasoning(ctx context.Context, result *AIReasoningResult, userID string) (string, error) {
	id, err := s.store.SaveReasoning(ctx, result, userID)
	if err != nil {
		return "", fmt.Errorf("storing reasoning for moment %s: %w", result.MomentID, err)
	}
	log.Printf("[reasoning] stored reasoning %s for moment %s", id, result.MomentID)
	return id, nil
}

// ReasoningByMoment returns the stored reasoning for a moment, most recent
// first.
func (s *Service) ReasoningByMoment(ctx context.Context, momentID string, limit int) ([]AIReasoningResult, error) {
	if limit <= 0 {
		limit = 10
	}
	results, err := s.store.ReasoningByMoment(ctx, momentID, limit)
	if err != nil {
		return nil, fmt.Errorf("getting reasoning for moment %s: %w", momentID, err)
	}
	return results, nil
}

// RecordOutcome attaches an actual outcome to a stored reasoning record.
func (s *Service) RecordOutcome(ctx context.Context, outcome *ReasoningOutcome) error {
	if outcome.RecordedAt.IsZero() {
		outcome.RecordedAt = time.Now()
	}
	if err := s.store.SaveOutcome(ctx, outcome); err != nil {
		return fmt.Errorf("recording outcome for reasoning %s: %w", outcome.ReasoningID, err)
	}
	return nil
}

// Search runs a filtered reasoning history query and aggregates the
// returned page.
func (s *Service) Search(ctx context.Context, query *SearchQuery) (*SearchResult, error) {
	query.Normalize()

	total, results, err := s.store.SearchReasoning(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching reasoning history: %w", err)
	}

	return &SearchResult{
		TotalCount:   total,
		Results:      results,
		Aggregations: aggregate(results),
	}, nil
}

// aggregate summarizes one page of results. The aggregations cover the
// returned page only, not the full matching set.
func aggregate(results []ReasoningHistory) SearchAggregations {
	agg := SearchAggregations{
		DecisionDistribution:   map[string]int{},
		FactorTypeDistribution: map[string]int{},
		TotalResults:           len(results),
	}
	if len(results) == 0 {
		return agg
	}

	var confidenceSum float64
	for _, history := range results {
		reasoning := history.ReasoningResult
		agg.DecisionDistribution[reasoning.Decision]++
		confidenceSum += reasoning.ConfidenceScore
		for _, factor := range reasoning.Factors {
			agg.FactorTypeDistribution[string(factor.FactorType)]++
		}
	}
	agg.AverageConfidence = confidenceSum / float64(len(results))
	return agg
}

// HumanExplanation renders a reasoning record into plain English.
func (s *Service) HumanExplanation(result *AIReasoningResult) *Explanation {
	action := map[string]string{
		"buy":  "purchase",
		"sell": "sell",
		"hold": "hold onto",
		"skip": "skip",
	}[result.Decision]
	if action == "" {
		action = result.Decision
	}

	summary := fmt.Sprintf("AI recommends to %s this moment with %.0f%% confidence.", action, result.ConfidenceScore*100)

	topFactors := make([]ReasoningFactor, len(result.Factors))
	copy(topFactors, result.Factors)
	sort.Slice(topFactors, func(i, j int) bool {
		return math.Abs(topFactors[i].Impact) > math.Abs(topFactors[j].Impact)
	})
	if len(topFactors) > 3 {
		topFactors = topFactors[:3]
	}
	keyFactors := make([]string, 0, len(topFactors))
	for _, factor := range topFactors {
		keyFactors = append(keyFactors, fmt.Sprintf("%s: %s", factor.Name, factor.Description))
	}

	supportingStats := map[string]string{}
	for key, value := range result.KeyStatistics {
		num, ok := toFloat(value)
		if !ok {
			continue
		}
		title := titleCase(key)
		switch {
		case key == "current_price" || key == "fair_value":
			supportingStats[title] = fmt.Sprintf("$%.2f", num)
		case strings.HasSuffix(key, "_score") || strings.HasSuffix(key, "_ratio"):
			supportingStats[title] = fmt.Sprintf("%.1f", num)
		default:
			supportingStats[title] = fmt.Sprintf("%v", value)
		}
	}

	var confidenceExplanation string
	switch {
	case result.ConfidenceScore >= 0.8:
		confidenceExplanation = "High confidence due to strong supporting data and clear market signals."
	case result.ConfidenceScore >= 0.6:
		confidenceExplanation = "Moderate confidence with some uncertainty in market conditions or player performance."
	default:
		confidenceExplanation = "Lower confidence due to limited data or conflicting signals."
	}

	var changeFactors []string
	switch result.Decision {
	case "buy":
		changeFactors = []string{
			"Significant price increase above fair value",
			"Negative player performance trends",
			"Market sentiment turning bearish",
		}
	case "skip":
		changeFactors = []string{
			"Price dropping closer to fair value",
			"Improved player performance metrics",
			"Positive market momentum",
		}
	default:
		changeFactors = []string{}
	}

	riskAssessment := "No significant risks identified"
	if len(result.RiskFactors) > 0 {
		riskAssessment = strings.Join(result.RiskFactors, "; ")
	}

	return &Explanation{
		Summary:                 summary,
		DetailedExplanation:     result.PrimaryReasoning,
		KeyFactors:              keyFactors,
		SupportingStats:         supportingStats,
		MarketContext:           result.MarketContext.PriceTrendAnalysis,
		RiskAssessment:          riskAssessment,
		ConfidenceExplanation:   confidenceExplanation,
		WhatCouldChangeDecision: changeFactors,
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// PerformanceMetricsFor reports decision volume, accuracy against recorded
// outcomes, confidence calibration and factor importance for a period.
func (s *Service) PerformanceMetricsFor(ctx context.Context, from, to time.Time) (*PerformanceMetrics, error) {
	totalDecisions, _, err := s.store.DecisionStats(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("counting decisions: %w", err)
	}

	accurate, err := s.store.AccurateDecisions(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("counting accurate decisions: %w", err)
	}

	var accuracyRate float64
	if totalDecisions > 0 {
		accuracyRate = float64(accurate) / float64(totalDecisions)
	}

	pairs, err := s.store.ConfidenceAccuracyPairs(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading confidence outcomes: %w", err)
	}
	calibration := ConfidenceCalibration(pairs)

	importance, err := s.store.FactorImportance(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("ranking factor importance: %w", err)
	}

	recent, err := s.Search(ctx, &SearchQuery{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, err
	}

	return &PerformanceMetrics{
		TotalDecisions:          totalDecisions,
		AccuracyRate:            accuracyRate,
		ConfidenceCalibration:   calibration,
		FactorImportanceRanking: importance,
		CommonFailureModes:      failureModes(recent.Results),
		ImprovementSuggestions:  improvementSuggestions(accuracyRate, calibration, importance),
	}, nil
}

// ConfidenceCalibration measures how well stated confidence matched actual
// accuracy. Pairs are bucketed low (<0.5), medium (<0.8) and high, compared
// against expected accuracies of 0.25, 0.65 and 0.9, and scored as one minus
// the mean absolute error over non-empty buckets. No pairs scores zero.
func ConfidenceCalibration(pairs []ConfidenceAccuracyPair) float64 {
	if len(pairs) == 0 {
		return 0.0
	}

	buckets := map[string][]float64{}
	for _, pair := range pairs {
		switch {
		case pair.Confidence < 0.5:
			buckets["low"] = append(buckets["low"], pair.Accuracy)
		case pair.Confidence < 0.8:
			buckets["medium"] = append(buckets["medium"], pair.Accuracy)
		default:
			buckets["high"] = append(buckets["high"], pair.Accuracy)
		}
	}

	expected := map[string]float64{"low": 0.25, "medium": 0.65, "high": 0.9}

	var errorSum float64
	var bucketCount int
	for name, accuracies := range buckets {
		if len(accuracies) == 0 {
			continue
		}
		var sum float64
		for _, a := range accuracies {
			sum += a
		}
		errorSum += math.Abs(sum/float64(len(accuracies)) - expected[name])
		bucketCount++
	}
	if bucketCount == 0 {
		return 0.0
	}

	return math.Max(0.0, 1.0-errorSum/float64(bucketCount))
}

// failureModes flags recurring weaknesses in a set of recent decisions.
func failureModes(results []ReasoningHistory) []string {
	modes := []string{}
	if len(results) == 0 {
		return modes
	}

	lowConfidence := 0
	for _, history := range results {
		if history.ReasoningResult.ConfidenceScore < 0.5 {
			lowConfidence++
		}
	}
	if float64(lowConfidence) > float64(len(results))*0.3 {
		modes = append(modes, "High frequency of low-confidence decisions")
	}

	factorUsage := map[string]int{}
	totalFactors := 0
	for _, history := range results {
		for _, factor := range history.ReasoningResult.Factors {
			factorUsage[string(factor.FactorType)]++
			totalFactors++
		}
	}
	if totalFactors > 0 {
		types := make([]string, 0, len(factorUsage))
		for factorType := range factorUsage {
			types = append(types, factorType)
		}
		sort.Strings(types)
		for _, factorType := range types {
			if float64(factorUsage[factorType])/float64(totalFactors) > 0.6 {
				modes = append(modes, fmt.Sprintf("Over-reliance on %s factors", factorType))
			}
		}
	}

	return modes
}

func improvementSuggestions(accuracyRate, calibration float64, importance map[string]float64) []string {
	suggestions := []string{}

	if accuracyRate < 0.6 {
		suggestions = append(suggestions,
			"Improve data quality and feature engineering",
			"Consider ensemble methods for decision making")
	}

	if calibration < 0.7 {
		suggestions = append(suggestions,
			"Recalibrate confidence scoring algorithm",
			"Add uncertainty quantification methods")
	}

	if len(importance) > 0 {
		maxImportance := math.Inf(-1)
		minImportance := math.Inf(1)
		for _, value := range importance {
			maxImportance = math.Max(maxImportance, value)
			minImportance = math.Min(minImportance, value)
		}
		if maxImportance > minImportance*3 {
			suggestions = append(suggestions, "Balance factor weights to reduce over-reliance on single factors")
		}
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Performance is good - continue monitoring and fine-tuning")
	}

	return suggestions
}
