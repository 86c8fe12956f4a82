package signal

// LevelSet 為價格、停損與兩個目標價。nil 代表未提供也無法推算。
type LevelSet struct {
	Price *float64
	Stop  *float64
	TP1   *float64
	TP2   *float64
}

// RiskRewardPair holds the reward/risk ratio for each target.
type RiskRewardPair struct {
	RR1 *float64
	RR2 *float64
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
