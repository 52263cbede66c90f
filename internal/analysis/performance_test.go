package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func testGame(points, rebounds, assists int, minutes float64, plusMinus *int) GameStats {
	return GameStats{
		GameID:              "game-1",
		PlayerID:            "player-1",
		MinutesPlayed:       minutes,
		Points:              points,
		Rebounds:            rebounds,
		Assists:             assists,
		Steals:              1,
		Blocks:              1,
		Turnovers:           2,
		FieldGoalsMade:      points / 3,
		FieldGoalsAttempted: points / 2,
		FreeThrowsMade:      2,
		FreeThrowsAttempted: 2,
		PlusMinus:           plusMinus,
	}
}

func testProfile(yearsPro int, position Position) *PlayerProfile {
	return &PlayerProfile{
		PlayerID:    "player-1",
		Name:        "Test Player",
		Position:    position,
		YearsPro:    yearsPro,
		CurrentTeam: "TST",
	}
}

func testSeason(mpg, per, usage float64, gamesPlayed int) *SeasonStats {
	return &SeasonStats{
		PlayerID:               "player-1",
		Season:                 "2024-25",
		GamesPlayed:            gamesPlayed,
		MinutesPerGame:         mpg,
		PointsPerGame:          22.5,
		ReboundsPerGame:        7.2,
		AssistsPerGame:         5.1,
		PlayerEfficiencyRating: per,
		UsageRate:              usage,
	}
}

func TestRecentFormScoreEmptyGames(t *testing.T) {
	a := NewPerformanceAnalyzer()
	assert.Equal(t, 50.0, a.RecentFormScore(nil, nil))
	assert.Equal(t, 50.0, a.RecentFormScore([]GameStats{}, nil))
}

func TestRecentFormScoreBounds(t *testing.T) {
	a := NewPerformanceAnalyzer()

	monster := []GameStats{testGame(55, 18, 14, 40, intPtr(20))}
	quiet := []GameStats{testGame(2, 1, 0, 8, intPtr(-5))}

	high := a.RecentFormScore(monster, nil)
	low := a.RecentFormScore(quiet, nil)

	assert.LessOrEqual(t, high, 100.0)
	assert.GreaterOrEqual(t, low, 0.0)
	assert.Greater(t, high, low)
}

func TestRecentFormScoreRecencyWeighting(t *testing.T) {
	a := NewPerformanceAnalyzer()

	// Most-recent-first: big game first should outscore big game last
	bigFirst := []GameStats{
		testGame(40, 10, 8, 36, nil),
		testGame(8, 2, 1, 20, nil),
	}
	bigLast := []GameStats{
		testGame(8, 2, 1, 20, nil),
		testGame(40, 10, 8, 36, nil),
	}

	assert.Greater(t, a.RecentFormScore(bigFirst, nil), a.RecentFormScore(bigLast, nil))
}

func TestRecentFormScoreCallerWeights(t *testing.T) {
	a := NewPerformanceAnalyzer()
	games := []GameStats{
		testGame(30, 8, 6, 34, nil),
		testGame(10, 3, 2, 22, nil),
	}

	// All weight on the first game should match the single-game score
	weighted := a.RecentFormScore(games, []float64{1, 0})
	single := a.RecentFormScore(games[:1], nil)
	assert.InDelta(t, single, weighted, 1e-9)
}

func TestSeasonConsistencyTooFewGames(t *testing.T) {
	a := NewPerformanceAnalyzer()

	games := []GameStats{
		testGame(20, 6, 4, 30, nil),
		testGame(22, 7, 5, 31, nil),
	}

	assert.Equal(t, 50.0, a.SeasonConsistency(testSeason(32, 18, 0.2, 70), games))
}

func TestSeasonConsistencyRewardsStability(t *testing.T) {
	a := NewPerformanceAnalyzer()
	season := testSeason(32, 18, 0.2, 70)

	steady := make([]GameStats, 6)
	for i := range steady {
		steady[i] = testGame(25, 7, 5, 32, nil)
	}

	erratic := []GameStats{
		testGame(40, 12, 9, 36, nil),
		testGame(5, 2, 1, 20, nil),
		testGame(35, 10, 8, 35, nil),
		testGame(8, 3, 1, 22, nil),
		testGame(30, 9, 6, 34, nil),
		testGame(4, 1, 0, 15, nil),
	}

	steadyScore := a.SeasonConsistency(season, steady)
	erraticScore := a.SeasonConsistency(season, erratic)

	assert.Greater(t, steadyScore, erraticScore)
	assert.GreaterOrEqual(t, erraticScore, 0.0)
	assert.LessOrEqual(t, steadyScore, 100.0)
	// Identical box scores mean zero variance and a perfect score
	assert.InDelta(t, 100.0, steadyScore, 1e-9)
}

func TestClutchPerformanceNoPlusMinus(t *testing.T) {
	a := NewPerformanceAnalyzer()

	games := []GameStats{
		testGame(20, 6, 4, 30, nil),
		testGame(22, 7, 5, 31, nil),
	}

	assert.Equal(t, 50.0, a.ClutchPerformance(games))
	assert.Equal(t, 50.0, a.ClutchPerformance(nil))
}

func TestClutchPerformanceScaling(t *testing.T) {
	a := NewPerformanceAnalyzer()

	positive := []GameStats{testGame(20, 6, 4, 30, intPtr(10))}
	negative := []GameStats{testGame(20, 6, 4, 30, intPtr(-10))}
	extreme := []GameStats{testGame(20, 6, 4, 30, intPtr(40))}

	assert.Equal(t, 70.0, a.ClutchPerformance(positive))
	assert.Equal(t, 30.0, a.ClutchPerformance(negative))
	// +2 per plus/minus point, clamped at 100
	assert.Equal(t, 100.0, a.ClutchPerformance(extreme))
}

func TestBreakoutPotentialBrackets(t *testing.T) {
	a := NewPerformanceAnalyzer()

	// Young, high-usage starter: 50+20+15+10
	young := a.BreakoutPotential(testProfile(1, PointGuard), testSeason(34, 19, 0.28, 70))
	assert.Equal(t, 95.0, young)

	// Old, low-usage, inefficient reserve bottoms out
	old := a.BreakoutPotential(testProfile(12, PointGuard), testSeason(15, 10, 0.10, 40))
	assert.Equal(t, 5.0, old)

	assert.Greater(t, young, old)
}

func TestVeteranStabilityBrackets(t *testing.T) {
	a := NewPerformanceAnalyzer()

	vet := a.VeteranStability(testProfile(10, PointGuard), testSeason(30, 20, 0.2, 75))
	rookie := a.VeteranStability(testProfile(1, PointGuard), testSeason(20, 11, 0.15, 45))

	assert.Equal(t, 95.0, vet)   // 50+20+15+10
	assert.Equal(t, 5.0, rookie) // 50-10-15-20
}

func TestInjuryRiskPositionSurcharge(t *testing.T) {
	a := NewPerformanceAnalyzer()
	season := testSeason(30, 18, 0.2, 75)

	guard := a.InjuryRisk(testProfile(3, PointGuard), season, nil)
	center := a.InjuryRisk(testProfile(3, Center), season, nil)

	assert.Equal(t, guard+10, center)
}

func TestInjuryRiskLoadAndAvailability(t *testing.T) {
	a := NewPerformanceAnalyzer()

	// 14 years pro, heavy minutes, missed games: 20+20+15+20
	high := a.InjuryRisk(testProfile(14, ShootingGuard), testSeason(38, 18, 0.2, 55), nil)
	assert.Equal(t, 75.0, high)

	low := a.InjuryRisk(testProfile(2, ShootingGuard), testSeason(28, 18, 0.2, 78), nil)
	assert.Equal(t, 20.0, low)
}

func TestAnalyzePlayerPerformanceComposes(t *testing.T) {
	a := NewPerformanceAnalyzer()

	games := make([]GameStats, 6)
	for i := range games {
		games[i] = testGame(24, 7, 5, 33, intPtr(5))
	}

	metrics := a.AnalyzePlayerPerformance(testProfile(4, SmallForward), testSeason(33, 19, 0.22, 72), games)
	require.NotNil(t, metrics)

	assert.Equal(t, "player-1", metrics.PlayerID)
	assert.Equal(t, 50.0, metrics.MarketMomentum) // placeholder until market feed exists

	for name, score := range map[string]float64{
		"recent_form":        metrics.RecentForm,
		"season_consistency": metrics.SeasonConsistency,
		"clutch_performance": metrics.ClutchPerformance,
		"injury_risk":        metrics.InjuryRisk,
		"breakout_potential": metrics.BreakoutPotential,
		"veteran_stability":  metrics.VeteranStability,
	} {
		assert.GreaterOrEqual(t, score, 0.0, name)
		assert.LessOrEqual(t, score, 100.0, name)
	}
}

func TestPredictNextGameFallsBackToSeasonAverages(t *testing.T) {
	a := NewPerformanceAnalyzer()
	season := testSeason(33, 19, 0.22, 72)

	prediction := a.PredictNextGame(testProfile(4, SmallForward), season, nil, 110)
	require.NotNil(t, prediction)

	assert.Equal(t, season.PointsPerGame, prediction.PredictedPoints)
	assert.Equal(t, season.ReboundsPerGame, prediction.PredictedRebounds)
	assert.Equal(t, season.AssistsPerGame, prediction.PredictedAssists)
	assert.Equal(t, 0.5, prediction.Confidence)
}

func TestPredictNextGameOpponentAdjustment(t *testing.T) {
	a := NewPerformanceAnalyzer()
	season := testSeason(33, 19, 0.22, 72)

	games := make([]GameStats, 5)
	for i := range games {
		games[i] = testGame(20, 8, 4, 32, nil)
	}

	// Scoring scales inversely with the opponent rating ratio
	vsLowRated := a.PredictNextGame(testProfile(4, SmallForward), season, games, 105)
	vsHighRated := a.PredictNextGame(testProfile(4, SmallForward), season, games, 120)

	assert.Greater(t, vsLowRated.PredictedPoints, vsHighRated.PredictedPoints)
	assert.Equal(t, vsLowRated.PredictedRebounds, vsHighRated.PredictedRebounds)

	// Identical scoring lines give maximum confidence
	assert.InDelta(t, 1.0, vsLowRated.Confidence, 1e-9)
}

func TestComparePlayers(t *testing.T) {
	a := NewPerformanceAnalyzer()

	strong := &PerformanceMetrics{
		PlayerID:          "p1",
		RecentForm:        85,
		SeasonConsistency: 80,
		ClutchPerformance: 75,
		InjuryRisk:        20,
		BreakoutPotential: 70,
		VeteranStability:  65,
	}
	weak := &PerformanceMetrics{
		PlayerID:          "p2",
		RecentForm:        45,
		SeasonConsistency: 50,
		ClutchPerformance: 40,
		InjuryRisk:        60,
		BreakoutPotential: 40,
		VeteranStability:  50,
	}

	cmp := a.ComparePlayers(strong, weak)
	assert.Equal(t, "player1", cmp.OverallAdvantage)
	assert.Equal(t, 40.0, cmp.RecentFormDiff)
	// Lower injury risk for player 1 shows as a positive delta
	assert.Equal(t, 40.0, cmp.InjuryRiskDiff)

	reversed := a.ComparePlayers(weak, strong)
	assert.Equal(t, "player2", reversed.OverallAdvantage)

	same := a.ComparePlayers(strong, strong)
	assert.Equal(t, "similar", same.OverallAdvantage)
}
