package service

import (
	"context"
	"testing"

	"github.com/fortuna/augur/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationsForHotConsistentPlayer(t *testing.T) {
	metrics := &analysis.PerformanceMetrics{
		RecentForm:        85,
		SeasonConsistency: 85,
		BreakoutPotential: 80,
		InjuryRisk:        20,
	}

	recs := recommendationsFor(metrics)

	require.Len(t, recs, 3)
	assert.Contains(t, recs, "Player is in excellent recent form - consider buying moments")
	assert.Contains(t, recs, "High breakout potential - good long-term investment candidate")
	assert.Contains(t, recs, "Very consistent performer - reliable investment")
}

func TestRecommendationsForStrugglingRiskyPlayer(t *testing.T) {
	metrics := &analysis.PerformanceMetrics{
		RecentForm:        30,
		SeasonConsistency: 35,
		BreakoutPotential: 40,
		InjuryRisk:        80,
	}

	recs := recommendationsFor(metrics)

	require.Len(t, recs, 3)
	assert.Contains(t, recs, "Player struggling recently - wait for improvement before buying")
	assert.Contains(t, recs, "High injury risk - consider this in investment decisions")
	assert.Contains(t, recs, "Inconsistent performance - higher risk investment")
}

func TestRecommendationsForAveragePlayerIsEmpty(t *testing.T) {
	metrics := &analysis.PerformanceMetrics{
		RecentForm:        60,
		SeasonConsistency: 60,
		BreakoutPotential: 50,
		InjuryRisk:        40,
	}

	assert.Empty(t, recommendationsFor(metrics))
}

func TestMarketDataSnapshotShape(t *testing.T) {
	s := &ScoutService{}

	market := s.marketData(context.Background(), "moment-1")

	require.Len(t, market.PriceHistory, 10)
	require.Len(t, market.ComparableSales, 3)

	// Ordered oldest to newest, declining toward the present.
	assert.Equal(t, 150.0, market.PriceHistory[0].Price)
	assert.Equal(t, 105.0, market.PriceHistory[9].Price)
	assert.True(t, market.PriceHistory[0].Timestamp.Before(market.PriceHistory[9].Timestamp))

	assert.Equal(t, 75, market.TotalMomentsForPlayer)
	assert.Equal(t, 2500, market.TotalCirculation)
	assert.Equal(t, 0.15, market.Volatility)
	assert.Equal(t, 0.25, market.LiquidityRisk)
}
