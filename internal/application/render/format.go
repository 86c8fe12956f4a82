// Package render builds the platform-independent alert, its reference links
// and the button rows attached to it.
package render

import (
	"strconv"
	"strings"
)

// Placeholder is shown for values that are missing.
const Placeholder = "—"

// FormatNumber renders v with six decimals and strips trailing zeros and a
// trailing decimal point. nil renders as Placeholder.
func FormatNumber(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
