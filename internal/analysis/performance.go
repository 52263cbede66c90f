package analysis

import (
	"math"
	"time"
)

// PerformanceAnalyzer derives normalized 0-100 performance scores from a
// player's game log and season aggregate.
type PerformanceAnalyzer struct{}

// NewPerformanceAnalyzer creates a new performance analyzer
func NewPerformanceAnalyzer() *PerformanceAnalyzer {
	return &PerformanceAnalyzer{}
}

// RecentFormScore computes a weighted form score over recent games, ordered
// most-recent-first. If weights is nil, games are weighted 1/(i+1) so newer
// games matter more; weights are normalized to sum to 1. Empty input returns
// the neutral 50.
func (a *PerformanceAnalyzer) RecentFormScore(recentGames []GameStats, weights []float64) float64 {
	if len(recentGames) == 0 {
		return 50.0
	}

	if weights == nil {
		weights = make([]float64, len(recentGames))
		for i := range weights {
			weights[i] = 1.0 / float64(i+1)
		}
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}

	var score float64
	for i, game := range recentGames {
		efficiency := game.EfficiencyRating()
		minutesFactor := math.Min(game.MinutesPlayed/36.0, 1.0)

		// Composite game score: each stat contributes a capped share of 100
		gameScore := (float64(game.Points)/30.0*25 +
			float64(game.Rebounds)/15.0*15 +
			float64(game.Assists)/12.0*15 +
			float64(game.Steals)/4.0*10 +
			float64(game.Blocks)/4.0*10 +
			efficiency/30.0*25) * minutesFactor

		gameScore = math.Min(gameScore, 100.0)
		score += gameScore * (weights[i] / totalWeight)
	}

	return score
}

// SeasonConsistency scores how stable a player's production is, based on the
// coefficient of variation of points, rebounds and assists over recent games.
// Fewer than 5 games is not enough signal and returns the neutral 50.
func (a *PerformanceAnalyzer) SeasonConsistency(seasonStats *SeasonStats, recentGames []GameStats) float64 {
	if len(recentGames) < 5 {
		return 50.0
	}

	points := make([]float64, len(recentGames))
	rebounds := make([]float64, len(recentGames))
	assists := make([]float64, len(recentGames))
	for i, game := range recentGames {
		points[i] = float64(game.Points)
		rebounds[i] = float64(game.Rebounds)
		assists[i] = float64(game.Assists)
	}

	avgCV := (coefficientOfVariation(points) +
		coefficientOfVariation(rebounds) +
		coefficientOfVariation(assists)) / 3

	return clamp(100-avgCV*100, 0, 100)
}

// ClutchPerformance estimates clutch ability from plus/minus as a proxy.
// Games without a plus/minus value are skipped; no usable games returns 50.
func (a *PerformanceAnalyzer) ClutchPerformance(recentGames []GameStats) float64 {
	var sum float64
	var count int

	for _, game := range recentGames {
		if game.PlusMinus == nil {
			continue
		}
		sum += clamp(50+float64(*game.PlusMinus)*2, 0, 100)
		count++
	}

	if count == 0 {
		return 50.0
	}
	return sum / float64(count)
}

// BreakoutPotential scores how likely a player is to take a leap, favoring
// young players with high usage, efficiency and minutes.
func (a *PerformanceAnalyzer) BreakoutPotential(profile *PlayerProfile, seasonStats *SeasonStats) float64 {
	score := 50.0

	switch {
	case profile.YearsPro <= 2:
		score += 20
	case profile.YearsPro <= 4:
		score += 10
	case profile.YearsPro >= 10:
		score -= 10
	}

	if seasonStats.UsageRate > 0.25 {
		score += 15
	} else if seasonStats.UsageRate < 0.15 {
		score -= 10
	}

	if seasonStats.PlayerEfficiencyRating > 20 {
		score += 10
	} else if seasonStats.PlayerEfficiencyRating < 15 {
		score -= 10
	}

	if seasonStats.MinutesPerGame > 30 {
		score += 10
	} else if seasonStats.MinutesPerGame < 20 {
		score -= 15
	}

	return clamp(score, 0, 100)
}

// VeteranStability scores a player's reliability, favoring experienced,
// efficient and available players.
func (a *PerformanceAnalyzer) VeteranStability(profile *PlayerProfile, seasonStats *SeasonStats) float64 {
	score := 50.0

	switch {
	case profile.YearsPro >= 8:
		score += 20
	case profile.YearsPro >= 5:
		score += 10
	default:
		score -= 10
	}

	if seasonStats.PlayerEfficiencyRating > 18 {
		score += 15
	} else if seasonStats.PlayerEfficiencyRating < 12 {
		score -= 15
	}

	if seasonStats.GamesPlayed > 70 {
		score += 10
	} else if seasonStats.GamesPlayed < 50 {
		score -= 20
	}

	return clamp(score, 0, 100)
}

// InjuryRisk estimates injury exposure from career length, minutes load,
// recent availability and position.
func (a *PerformanceAnalyzer) InjuryRisk(profile *PlayerProfile, seasonStats *SeasonStats, recentGames []GameStats) float64 {
	risk := 20.0

	if profile.YearsPro >= 12 {
		risk += 20
	} else if profile.YearsPro >= 8 {
		risk += 10
	}

	if seasonStats.MinutesPerGame > 36 {
		risk += 15
	} else if seasonStats.MinutesPerGame > 32 {
		risk += 5
	}

	if seasonStats.GamesPlayed < 60 {
		risk += 20
	} else if seasonStats.GamesPlayed < 70 {
		risk += 10
	}

	// Bigs carry a higher baseline injury rate
	if profile.Position == Center || profile.Position == PowerForward {
		risk += 10
	}

	return clamp(risk, 0, 100)
}

// AnalyzePlayerPerformance runs the full set of sub-scores and returns a
// fresh PerformanceMetrics for the player.
//
// MarketMomentum is a fixed placeholder (50.0) until an external market feed
// is wired in.
func (a *PerformanceAnalyzer) AnalyzePlayerPerformance(profile *PlayerProfile, seasonStats *SeasonStats, recentGames []GameStats) *PerformanceMetrics {
	return &PerformanceMetrics{
		PlayerID:          profile.PlayerID,
		EvaluationDate:    time.Now(),
		RecentForm:        a.RecentFormScore(recentGames, nil),
		SeasonConsistency: a.SeasonConsistency(seasonStats, recentGames),
		ClutchPerformance: a.ClutchPerformance(recentGames),
		InjuryRisk:        a.InjuryRisk(profile, seasonStats, recentGames),
		MarketMomentum:    50.0,
		BreakoutPotential: a.BreakoutPotential(profile, seasonStats),
		VeteranStability:  a.VeteranStability(profile, seasonStats),
	}
}

// PredictNextGame projects the player's next-game line. With no recent games
// it falls back to season averages at 0.5 confidence. Scoring is adjusted by
// the opponent's defensive rating relative to the league average of 112.0;
// assists are half as sensitive and rebounds are left unadjusted.
func (a *PerformanceAnalyzer) PredictNextGame(profile *PlayerProfile, seasonStats *SeasonStats, recentGames []GameStats, opponentDefenseRating float64) *GamePrediction {
	if len(recentGames) == 0 {
		return &GamePrediction{
			PlayerID:          profile.PlayerID,
			PredictedPoints:   seasonStats.PointsPerGame,
			PredictedRebounds: seasonStats.ReboundsPerGame,
			PredictedAssists:  seasonStats.AssistsPerGame,
			Confidence:        0.5,
		}
	}

	last5 := recentGames
	if len(last5) > 5 {
		last5 = last5[:5]
	}

	var points, rebounds, assists float64
	for _, game := range last5 {
		points += float64(game.Points)
		rebounds += float64(game.Rebounds)
		assists += float64(game.Assists)
	}
	n := float64(len(last5))
	points /= n
	rebounds /= n
	assists /= n

	const leagueAvgDefense = 112.0
	difficulty := opponentDefenseRating / leagueAvgDefense

	last10 := recentGames
	if len(last10) > 10 {
		last10 = last10[:10]
	}
	pointsSamples := make([]float64, len(last10))
	for i, game := range last10 {
		pointsSamples[i] = float64(game.Points)
	}

	confidence := 0.3
	if points > 0 {
		confidence = math.Max(0.3, 1.0-stddev(pointsSamples)/points)
	}

	return &GamePrediction{
		PlayerID:          profile.PlayerID,
		PredictedPoints:   points / difficulty,
		PredictedRebounds: rebounds,
		PredictedAssists:  assists / (difficulty * 0.5),
		Confidence:        confidence,
	}
}

// ComparePlayers computes per-metric deltas between two players and an
// overall verdict. The deltas are weighted recent-form 0.3, consistency 0.2,
// clutch 0.2, injury 0.1, breakout 0.1, stability 0.1; a total within ±5
// reads as "similar".
func (a *PerformanceAnalyzer) ComparePlayers(p1, p2 *PerformanceMetrics) *PlayerComparison {
	cmp := &PlayerComparison{
		Player1ID:       p1.PlayerID,
		Player2ID:       p2.PlayerID,
		RecentFormDiff:  p1.RecentForm - p2.RecentForm,
		ConsistencyDiff: p1.SeasonConsistency - p2.SeasonConsistency,
		ClutchDiff:      p1.ClutchPerformance - p2.ClutchPerformance,
		InjuryRiskDiff:  p2.InjuryRisk - p1.InjuryRisk, // lower risk is better
		BreakoutDiff:    p1.BreakoutPotential - p2.BreakoutPotential,
		StabilityDiff:   p1.VeteranStability - p2.VeteranStability,
	}

	totalDiff := cmp.RecentFormDiff*0.3 +
		cmp.ConsistencyDiff*0.2 +
		cmp.ClutchDiff*0.2 +
		cmp.InjuryRiskDiff*0.1 +
		cmp.BreakoutDiff*0.1 +
		cmp.StabilityDiff*0.1

	switch {
	case totalDiff > 5:
		cmp.OverallAdvantage = "player1"
	case totalDiff < -5:
		cmp.OverallAdvantage = "player2"
	default:
		cmp.OverallAdvantage = "similar"
	}

	return cmp
}

// coefficientOfVariation returns stdev/mean, or 1.0 for a zero mean
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if len(values) == 0 || m == 0 {
		return 1.0
	}
	return stddev(values) / m
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(values)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
