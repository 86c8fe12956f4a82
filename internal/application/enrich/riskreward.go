package enrich

import (
	"math"

	"alphaflow-alerts/internal/domain/signal"
)

// RiskReward returns |target-price| / |price-stop|, or nil when an input is
// missing or the risk is not positive.
func RiskReward(price, stop, target *float64) *float64 {
	if price == nil || stop == nil || target == nil {
		return nil
	}
	risk := math.Abs(*price - *stop)
	if risk <= 0 {
		return nil
	}
	return signal.Float(math.Abs(*target-*price) / risk)
}

// EvaluateRiskReward computes the ratio for both targets of a level set.
func EvaluateRiskReward(lv signal.LevelSet) signal.RiskRewardPair {
	return signal.RiskRewardPair{
		RR1: RiskReward(lv.Price, lv.Stop, lv.TP1),
		RR2: RiskReward(lv.Price, lv.Stop, lv.TP2),
	}
}
