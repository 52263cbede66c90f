package analysis

// Scorer turns a factor list and a market price into a fair value and a
// confidence score. The weighted-impact heuristic is the default; a trained
// model can be substituted without touching calling code.
type Scorer interface {
	Score(factors []ValuationFactor, basePrice float64) (fairValue, confidence float64)
}

// heuristicScorer blends factor impacts by weight and applies the result
// multiplicatively to the current market price. Confidence rewards factor
// agreement: it is 1 minus the standard deviation of the normalized factor
// values, floored at 0.3, or 0.5 when fewer than two factors are present.
type heuristicScorer struct{}

func (heuristicScorer) Score(factors []ValuationFactor, basePrice float64) (float64, float64) {
	var totalImpact, totalWeight float64
	for _, f := range factors {
		totalImpact += f.Impact * f.Weight
		totalWeight += f.Weight
	}

	avgImpact := 0.0
	if totalWeight > 0 {
		avgImpact = totalImpact / totalWeight
	}

	fairValue := basePrice * (1 + avgImpact/100)

	confidence := 0.5
	if len(factors) > 1 {
		values := make([]float64, len(factors))
		for i, f := range factors {
			values[i] = f.Value
		}
		confidence = clamp(1-stddev(values), 0.3, 1.0)
	}

	return fairValue, confidence
}
