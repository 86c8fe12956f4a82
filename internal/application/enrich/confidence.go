package enrich

import (
	"math"

	"alphaflow-alerts/internal/domain/signal"
)

// 啟發式信心分數的常數。
const (
	confidenceBase = 50.0

	rr1Pivot  = 1.0
	rr1Weight = 10.0
	rr1Cap    = 20.0

	rr2Pivot  = 2.0
	rr2Weight = 5.0
	rr2Cap    = 10.0

	trendBonus = 10.0

	rsiBullish = 55.0
	rsiBearish = 45.0
	rsiWeight  = 7.0

	heuristicMin = 5
	heuristicMax = 95
)

// ScoreConfidence returns the caller's confidence when it parses to a finite
// number (fractions in [0,1] are scaled to percent), otherwise the heuristic
// score. The result is always in [0,100].
func ScoreConfidence(p signal.Payload, rr signal.RiskRewardPair) int {
	if c, ok := p.Confidence.Value(); ok && !math.IsNaN(c) && !math.IsInf(c, 0) {
		if c >= 0 && c <= 1 {
			c *= 100
		}
		return clampScore(math.RoundToEven(c), 0, 100)
	}
	return heuristicConfidence(p, rr)
}

func heuristicConfidence(p signal.Payload, rr signal.RiskRewardPair) int {
	side := p.NormalizedSide()
	tech := p.Technicals
	score := confidenceBase

	if rrTerm(rr.RR1) {
		score += math.Min(rr1Cap, (*rr.RR1-rr1Pivot)*rr1Weight)
	}
	if rrTerm(rr.RR2) {
		score += math.Min(rr2Cap, (*rr.RR2-rr2Pivot)*rr2Weight)
	}

	fast, okFast := tech.EMAFast.Value()
	slow, okSlow := tech.EMASlow.Value()
	if okFast && okSlow {
		if side.Bullish() && fast > slow {
			score += trendBonus
		}
		if side.Bearish() && fast < slow {
			score += trendBonus
		}
	}

	if rsi, ok := tech.RSI.Value(); ok {
		if side.Bullish() {
			if rsi >= rsiBullish {
				score += rsiWeight
			} else if rsi <= rsiBearish {
				score -= rsiWeight
			}
		} else {
			if rsi <= rsiBearish {
				score += rsiWeight
			} else if rsi >= rsiBullish {
				score -= rsiWeight
			}
		}
	}

	return clampScore(math.RoundToEven(score), heuristicMin, heuristicMax)
}

// rrTerm reports whether a ratio contributes to the score; zero and NaN do not.
func rrTerm(v *float64) bool {
	return v != nil && *v != 0 && !math.IsNaN(*v)
}

func clampScore(v float64, lo, hi int) int {
	if math.IsNaN(v) || v < float64(lo) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}
