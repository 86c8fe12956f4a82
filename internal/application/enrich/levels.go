// Package enrich 補齊訊號的停損/目標價，計算風報比與信心分數。
// 所有函式皆為純函式，不持有共享狀態。
package enrich

import (
	"math"

	"alphaflow-alerts/internal/domain/signal"
)

// LevelConfig 為推算停損與目標價的倍數。
type LevelConfig struct {
	StopATR float64 // 停損距離 = StopATR × ATR
	TP1RR   float64 // TP1 距離 = TP1RR × 風險
	TP2RR   float64
}

func DefaultLevelConfig() LevelConfig {
	return LevelConfig{StopATR: 1.5, TP1RR: 1.0, TP2RR: 2.0}
}

// ComputeLevels fills stop/tp1/tp2 from price and ATR. Caller-supplied levels
// are never replaced, and nothing is derived without a price and an ATR.
func ComputeLevels(p signal.Payload, cfg LevelConfig) signal.LevelSet {
	lv := signal.LevelSet{
		Stop: p.Stop.Ptr(),
		TP1:  p.TP1.Ptr(),
		TP2:  p.TP2.Ptr(),
	}
	price, ok := p.Price.Value()
	if !ok {
		return lv
	}
	lv.Price = signal.Float(price)

	atr, ok := p.Technicals.ATR.Value()
	if !ok || atr == 0 {
		return lv
	}
	if p.Stop.IsPresent() && p.TP1.IsPresent() && p.TP2.IsPresent() {
		return lv
	}

	dir := p.NormalizedSide().Direction()
	if !p.Stop.IsPresent() {
		lv.Stop = signal.Float(price - dir*cfg.StopATR*atr)
	}
	if lv.Stop == nil {
		return lv
	}
	risk := math.Abs(price - *lv.Stop)
	if risk == 0 {
		return lv
	}
	if !p.TP1.IsPresent() {
		lv.TP1 = signal.Float(price + dir*risk*cfg.TP1RR)
	}
	if !p.TP2.IsPresent() {
		lv.TP2 = signal.Float(price + dir*risk*cfg.TP2RR)
	}
	return lv
}
