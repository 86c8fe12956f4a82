package render

import (
	"testing"

	"alphaflow-alerts/internal/domain/signal"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, Placeholder},
		{signal.Float(105), "105"},
		{signal.Float(105.12), "105.12"},
		{signal.Float(0.00012345), "0.000123"},
		{signal.Float(1234.5678901), "1234.56789"},
		{signal.Float(0), "0"},
		{signal.Float(-2.5), "-2.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestFormatNumber_Idempotent(t *testing.T) {
	for _, v := range []float64{105, 105.12, 3.3333333, 0.1} {
		once := FormatNumber(&v)
		again := signal.ParseNumber(once).Ptr()
		assert.Equal(t, once, FormatNumber(again))
	}
}
