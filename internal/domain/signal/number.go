package signal

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type numberState uint8

const (
	numberAbsent numberState = iota
	numberValid
	numberInvalid
)

// Number 是可缺省的數值欄位：缺少、有效數值、或存在但無法解析三種狀態。
type Number struct {
	state numberState
	value float64
	raw   string
}

// NumberOf returns a valid Number holding v.
func NumberOf(v float64) Number {
	return Number{state: numberValid, value: v}
}

// InvalidNumber returns a present-but-unparseable Number keeping the raw text.
func InvalidNumber(raw string) Number {
	return Number{state: numberInvalid, raw: raw}
}

// ParseNumber parses a textual value the way upstream strategies send it
// (surrounding whitespace allowed). NaN and infinities are invalid.
func ParseNumber(s string) Number {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return InvalidNumber(s)
	}
	return NumberOf(v)
}

// Value reports the number only when it is present and valid.
func (n Number) Value() (float64, bool) {
	if n.state != numberValid {
		return 0, false
	}
	return n.value, true
}

// Ptr returns nil unless the number is valid.
func (n Number) Ptr() *float64 {
	if n.state != numberValid {
		return nil
	}
	v := n.value
	return &v
}

func (n Number) IsPresent() bool { return n.state != numberAbsent }

func (n Number) IsValid() bool { return n.state == numberValid }

// Raw returns the original text of an invalid number.
func (n Number) Raw() string { return n.raw }

// UnmarshalJSON accepts JSON numbers and numeric strings. Anything else is kept
// as an invalid value instead of failing the whole payload.
func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = Number{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			*n = InvalidNumber(string(trimmed))
			return nil
		}
		*n = ParseNumber(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		*n = InvalidNumber(string(trimmed))
		return nil
	}
	*n = NumberOf(v)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	switch n.state {
	case numberValid:
		return json.Marshal(n.value)
	case numberInvalid:
		return json.Marshal(n.raw)
	default:
		return []byte("null"), nil
	}
}
