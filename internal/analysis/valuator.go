package analysis

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"
)

// Factor weights used by the valuator. They must sum to 1.0.
const (
	weightPlayerPerformance = 0.35
	weightScarcity          = 0.25
	weightMarketTrend       = 0.20
	weightSocialSentiment   = 0.20
)

// momentTypeRarity scores how rare each moment type is on a 0-100 scale
var momentTypeRarity = map[MomentType]float64{
	MomentGameWinner:   95,
	MomentMilestone:    90,
	MomentDunk:         85,
	MomentBlock:        80,
	MomentSteal:        75,
	MomentThreePointer: 70,
	MomentAssist:       60,
	MomentRebound:      50,
}

const defaultMomentTypeRarity = 60

const analysisModelVersion = "1.0"

// MomentValuator combines performance, scarcity, market and social factors
// into a fair value, confidence score and recommendation for a moment.
type MomentValuator struct {
	weights map[FactorKind]float64
	scorer  Scorer
}

// NewMomentValuator creates a valuator with the standard factor weights and
// the heuristic scorer.
func NewMomentValuator() *MomentValuator {
	return &MomentValuator{
		weights: map[FactorKind]float64{
			FactorPlayerPerformance: weightPlayerPerformance,
			FactorScarcity:          weightScarcity,
			FactorMarketTrend:       weightMarketTrend,
			FactorSocialSentiment:   weightSocialSentiment,
		},
		scorer: heuristicScorer{},
	}
}

// FactorWeights returns a copy of the configured factor weights
func (v *MomentValuator) FactorWeights() map[FactorKind]float64 {
	weights := make(map[FactorKind]float64, len(v.weights))
	for k, w := range v.weights {
		weights[k] = w
	}
	return weights
}

// PerformanceFactor builds the player-performance valuation factor from
// analyzer metrics. The overall score blends recent form 0.4, consistency
// 0.3, clutch 0.3.
func (v *MomentValuator) PerformanceFactor(metrics *PerformanceMetrics) ValuationFactor {
	overall := metrics.RecentForm*0.4 +
		metrics.SeasonConsistency*0.3 +
		metrics.ClutchPerformance*0.3

	return ValuationFactor{
		Kind:   FactorPlayerPerformance,
		Weight: v.weights[FactorPlayerPerformance],
		Value:  overall / 100.0,
		Impact: (overall - 50) * 1.5,
		Description: fmt.Sprintf("Player performance: Recent form %.1f, Consistency %.1f, Clutch %.1f",
			metrics.RecentForm, metrics.SeasonConsistency, metrics.ClutchPerformance),
		Performance: &PerformancePayload{
			RecentForm:        metrics.RecentForm,
			SeasonConsistency: metrics.SeasonConsistency,
			CareerTrajectory:  metrics.BreakoutPotential,
			ClutchPerformance: metrics.ClutchPerformance,
		},
	}
}

// ScarcityFactor builds the scarcity valuation factor. Serial rarity, moment
// type rarity, per-player moment count and total circulation blend 0.4 /
// 0.3 / 0.2 / 0.1.
func (v *MomentValuator) ScarcityFactor(req *AnalyzeMomentRequest, totalMomentsForPlayer, totalCirculation int) ValuationFactor {
	// Lower serials are rarer
	serialRarity := clamp(100-float64(req.SerialNumber)/1000*100, 0, 100)

	typeRarity, ok := momentTypeRarity[req.MomentType]
	if !ok {
		typeRarity = defaultMomentTypeRarity
	}

	playerScarcity := clamp(100-float64(totalMomentsForPlayer)/100*100, 0, 100)
	circulationScarcity := clamp(100-float64(totalCirculation)/10000*100, 0, 100)

	overall := serialRarity*0.4 + typeRarity*0.3 + playerScarcity*0.2 + circulationScarcity*0.1

	return ValuationFactor{
		Kind:   FactorScarcity,
		Weight: v.weights[FactorScarcity],
		Value:  overall / 100.0,
		Impact: (overall - 50) * 1.5,
		Description: fmt.Sprintf("Scarcity analysis: Serial #%d (%.1f/100), %s (%.0f/100), Player moments: %d",
			req.SerialNumber, serialRarity, req.MomentType, typeRarity, totalMomentsForPlayer),
		Scarcity: &ScarcityPayload{
			SerialNumberRarity: serialRarity,
			MomentTypeRarity:   typeRarity,
			PlayerMomentCount:  totalMomentsForPlayer,
			TotalCirculation:   totalCirculation,
		},
	}
}

// MarketTrendFactor builds the market-trend valuation factor from price
// history and comparable sales. With no price history it returns a neutral
// factor (value 0.5, impact 0).
func (v *MomentValuator) MarketTrendFactor(req *AnalyzeMomentRequest, priceHistory []PricePoint, comparableSales []ComparableSale) ValuationFactor {
	if len(priceHistory) == 0 {
		return ValuationFactor{
			Kind:        FactorMarketTrend,
			Weight:      v.weights[FactorMarketTrend],
			Value:       0.5,
			Impact:      0,
			Description: "No price history available",
			MarketTrend: &MarketTrendPayload{},
		}
	}

	recent := priceHistory
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	var priceMomentum float64
	if len(recent) >= 2 && recent[0].Price != 0 {
		change := (recent[len(recent)-1].Price - recent[0].Price) / recent[0].Price * 100
		priceMomentum = clamp(change, -100, 100)
	}

	var volumeTrend float64
	var totalVolume int
	for _, p := range recent {
		totalVolume += p.Volume
	}
	if len(recent) >= 2 && totalVolume > 0 {
		first := math.Max(float64(recent[0].Volume), 1)
		change := (float64(recent[len(recent)-1].Volume) - float64(recent[0].Volume)) / first * 100
		volumeTrend = clamp(change, -100, 100)
	}

	var marketSentiment float64
	if len(comparableSales) > 0 {
		var sum float64
		for _, sale := range comparableSales {
			sum += sale.Price
		}
		avgComparable := sum / float64(len(comparableSales))
		marketSentiment = clamp((req.CurrentPrice-avgComparable)/avgComparable, -1, 1)
	}

	trendScore := (priceMomentum+100)/2*0.4 +
		(volumeTrend+100)/2*0.3 +
		(marketSentiment+1)*50*0.3

	return ValuationFactor{
		Kind:   FactorMarketTrend,
		Weight: v.weights[FactorMarketTrend],
		Value:  trendScore / 100.0,
		Impact: (trendScore - 50) * 1.2,
		Description: fmt.Sprintf("Market trend: Price momentum %+.1f%%, Volume trend %+.1f%%, Market sentiment %+.2f",
			priceMomentum, volumeTrend, marketSentiment),
		MarketTrend: &MarketTrendPayload{
			PriceMomentum:        priceMomentum,
			VolumeTrend:          volumeTrend,
			MarketSentiment:      marketSentiment,
			ComparableSalesCount: len(comparableSales),
		},
	}
}

// SocialSentimentFactor builds the social-sentiment valuation factor. A nil
// signal is replaced with the documented default payload. Mentions are
// log-scaled so viral spikes do not dominate.
func (v *MomentValuator) SocialSentimentFactor(playerID string, signal *SocialSignal) ValuationFactor {
	if signal == nil {
		def := DefaultSocialSignal()
		signal = &def
	}

	mentionsScore := math.Min(100, math.Log10(math.Max(1, float64(signal.Mentions)))*20)
	sentimentScore := (signal.Sentiment + 1) * 50

	socialScore := mentionsScore*0.3 +
		sentimentScore*0.4 +
		signal.ViralScore*0.2 +
		math.Min(100, float64(signal.InfluencerMentions)*10)*0.1

	return ValuationFactor{
		Kind:   FactorSocialSentiment,
		Weight: v.weights[FactorSocialSentiment],
		Value:  socialScore / 100.0,
		Impact: (socialScore - 50) * 0.8,
		Description: fmt.Sprintf("Social sentiment: %d mentions, sentiment %+.2f, viral score %.0f",
			signal.Mentions, signal.Sentiment, signal.ViralScore),
		Social: &SocialPayload{
			Mentions:           signal.Mentions,
			Sentiment:          signal.Sentiment,
			ViralScore:         signal.ViralScore,
			InfluencerMentions: signal.InfluencerMentions,
		},
	}
}

// recommendationFor maps the fair-value/price ratio to a discrete label
func recommendationFor(priceRatio float64) string {
	switch {
	case priceRatio > 1.2:
		return "Strong Buy"
	case priceRatio > 1.05:
		return "Buy"
	case priceRatio > 0.95:
		return "Hold"
	case priceRatio > 0.8:
		return "Sell"
	default:
		return "Strong Sell"
	}
}

// AnalyzeMoment runs the full valuation for one moment: builds the four
// factors, scores a fair value and confidence, derives a recommendation and
// assembles the analysis result.
func (v *MomentValuator) AnalyzeMoment(req *AnalyzeMomentRequest, performance *PerformanceMetrics, market *MarketData, social *SocialSignal) *MomentAnalysisResult {
	factors := []ValuationFactor{
		v.PerformanceFactor(performance),
		v.ScarcityFactor(req, market.TotalMomentsForPlayer, market.TotalCirculation),
		v.MarketTrendFactor(req, market.PriceHistory, market.ComparableSales),
		v.SocialSentimentFactor(req.PlayerID, social),
	}

	fairValue, confidence := v.scorer.Score(factors, req.CurrentPrice)
	priceRatio := fairValue / req.CurrentPrice

	marketFactor := factors[2]

	valuation := MomentValuation{
		MomentID:       req.MomentID,
		FairValue:      fairValue,
		Confidence:     confidence,
		PriceRangeLow:  fairValue * 0.85,
		PriceRangeHigh: fairValue * 1.15,
		Recommendation: recommendationFor(priceRatio),
		AnalyzedAt:     time.Now(),
	}

	return &MomentAnalysisResult{
		MomentID:  req.MomentID,
		PlayerID:  req.PlayerID,
		Valuation: valuation,
		Factors:   factors,
		PlayerAnalysis: PlayerAnalysisContext{
			Metrics:     *performance,
			RecentForm:  performance.RecentForm,
			Consistency: performance.SeasonConsistency,
		},
		MarketAnalysis: MarketAnalysisContext{
			CurrentPrice: req.CurrentPrice,
			FairValue:    fairValue,
			PriceRatio:   priceRatio,
			Trend:        marketFactor.MarketTrend,
		},
		RiskAssessment: RiskAssessment{
			Confidence:      confidence,
			PriceVolatility: market.Volatility,
			LiquidityRisk:   market.LiquidityRisk,
		},
		Recommendations: v.generateRecommendations(req, valuation, factors),
		Metadata: AnalysisMetadata{
			AnalyzedAt:   time.Now(),
			ModelVersion: analysisModelVersion,
			FactorCount:  len(factors),
		},
	}
}

// generateRecommendations produces the human-readable recommendation lines:
// a price-delta message, one line per factor with |impact| > 20, and a
// confidence caveat outside the 0.5-0.8 band.
func (v *MomentValuator) generateRecommendations(req *AnalyzeMomentRequest, valuation MomentValuation, factors []ValuationFactor) []string {
	recommendations := []string{}

	priceRatio := valuation.FairValue / req.CurrentPrice
	if priceRatio > 1.2 {
		recommendations = append(recommendations,
			fmt.Sprintf("Strong buy opportunity: Fair value $%.2f vs current $%.2f", valuation.FairValue, req.CurrentPrice))
	} else if priceRatio < 0.8 {
		recommendations = append(recommendations,
			fmt.Sprintf("Consider selling: Current price $%.2f above fair value $%.2f", req.CurrentPrice, valuation.FairValue))
	}

	for _, factor := range factors {
		if factor.Impact > 20 {
			recommendations = append(recommendations, fmt.Sprintf("Positive %s: %s", factor.Kind, factor.Description))
		} else if factor.Impact < -20 {
			recommendations = append(recommendations, fmt.Sprintf("Negative %s: %s", factor.Kind, factor.Description))
		}
	}

	if valuation.Confidence < 0.5 {
		recommendations = append(recommendations, "Low confidence analysis - consider waiting for more data")
	} else if valuation.Confidence > 0.8 {
		recommendations = append(recommendations, "High confidence analysis - strong signal for action")
	}

	return recommendations
}

// BatchAnalyzeMoments analyzes each request independently. A request with no
// performance data is skipped with a warning so one bad input cannot abort
// the batch.
func (v *MomentValuator) BatchAnalyzeMoments(requests []*AnalyzeMomentRequest, performances map[string]*PerformanceMetrics, marketData map[string]*MarketData) []*MomentAnalysisResult {
	results := make([]*MomentAnalysisResult, 0, len(requests))

	for _, req := range requests {
		performance, ok := performances[req.PlayerID]
		if !ok || performance == nil {
			log.Printf("[valuator] no player performance data for %s, skipping moment %s", req.PlayerID, req.MomentID)
			continue
		}

		market, ok := marketData[req.MomentID]
		if !ok || market == nil {
			market = &MarketData{}
		}

		results = append(results, v.AnalyzeMoment(req, performance, market, nil))
	}

	return results
}

// UndervaluedMoments filters results to those with confidence at or above
// minConfidence and an upside ratio above 1+minUpside, sorted by descending
// upside.
func (v *MomentValuator) UndervaluedMoments(results []*MomentAnalysisResult, minConfidence, minUpside float64) []*MomentAnalysisResult {
	undervalued := make([]*MomentAnalysisResult, 0)

	for _, result := range results {
		ratio := result.Valuation.FairValue / result.MarketAnalysis.CurrentPrice
		if result.Valuation.Confidence >= minConfidence && ratio > 1+minUpside {
			undervalued = append(undervalued, result)
		}
	}

	sort.Slice(undervalued, func(i, j int) bool {
		ri := undervalued[i].Valuation.FairValue / undervalued[i].MarketAnalysis.CurrentPrice
		rj := undervalued[j].Valuation.FairValue / undervalued[j].MarketAnalysis.CurrentPrice
		return ri > rj
	})

	return undervalued
}
