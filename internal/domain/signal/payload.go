// Package signal models the trading-signal records pushed by upstream strategies.
package signal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Side 為訊號方向，統一為大寫。
type Side string

const (
	SideBuy   Side = "BUY"
	SideSell  Side = "SELL"
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// ParseSide upper-cases the raw side; an empty side means BUY.
func ParseSide(raw string) Side {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return SideBuy
	}
	return Side(s)
}

func (s Side) Bullish() bool {
	n := ParseSide(string(s))
	return n == SideBuy || n == SideLong
}

func (s Side) Bearish() bool {
	n := ParseSide(string(s))
	return n == SideSell || n == SideShort
}

// UnmarshalJSON keeps the raw side text; non-string scalars become text and
// anything else falls back to the BUY default.
func (s *Side) UnmarshalJSON(data []byte) error {
	*s = Side(scalarText(data))
	return nil
}

// Direction is +1 for bullish sides and -1 for everything else.
func (s Side) Direction() float64 {
	if s.Bullish() {
		return 1
	}
	return -1
}

// Technicals 為上游附帶的技術指標。
type Technicals struct {
	RSI     Number `json:"rsi"`
	EMAFast Number `json:"ema_fast"`
	EMASlow Number `json:"ema_slow"`
	ATR     Number `json:"atr"`
}

// UnmarshalJSON ignores a technicals value that is not an object.
func (t *Technicals) UnmarshalJSON(data []byte) error {
	type plain Technicals
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		*t = Technicals{}
		return nil
	}
	*t = Technicals(out)
	return nil
}

// Payload 為單筆交易訊號。
type Payload struct {
	Symbol     Text       `json:"symbol"`
	Timeframe  Text       `json:"timeframe"`
	Side       Side       `json:"side"`
	Price      Number     `json:"price"`
	Stop       Number     `json:"stop"`
	TP1        Number     `json:"tp1"`
	TP2        Number     `json:"tp2"`
	Technicals Technicals `json:"technicals"`
	Confidence Number     `json:"confidence"`
	Reason     Text       `json:"reason"`
	TVSymbol   Text       `json:"tv_symbol"`
}

// NormalizedSide returns the side with the BUY default applied.
func (p Payload) NormalizedSide() Side {
	return ParseSide(string(p.Side))
}

// DefaultSource is used when the request carries no source label.
const DefaultSource = "signal"

// Envelope 為 /send 請求主體，可為包裝格式或扁平格式。
type Envelope struct {
	Payload Payload
	Tier    string
	Source  string
}

var ErrNotObject = errors.New("request body must be a JSON object")

// DecodeEnvelope accepts both {"payload": {...}, "tier", "source"} and a flat
// payload carrying optional top-level tier/source.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return Envelope{}, ErrNotObject
	}

	env := Envelope{
		Tier:   rawString(top["tier"]),
		Source: rawString(top["source"]),
	}
	if env.Source == "" {
		env.Source = DefaultSource
	}

	body := data
	if inner, ok := top["payload"]; ok {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(inner, &probe); err != nil || probe == nil {
			return Envelope{}, fmt.Errorf("payload: %w", ErrNotObject)
		}
		body = inner
	}
	if err := json.Unmarshal(body, &env.Payload); err != nil {
		return Envelope{}, fmt.Errorf("decode payload: %w", err)
	}
	return env, nil
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
