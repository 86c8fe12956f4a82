package render

import (
	"net/url"
	"strings"

	"alphaflow-alerts/internal/domain/alert"
)

// BuildActionRows groups links into rows of at most alert.MaxButtonsPerRow
// buttons, keeping their order. Links without a label or with a URL that is
// not absolute are skipped.
func BuildActionRows(links []alert.Link) []alert.ActionRow {
	var rows []alert.ActionRow
	var current []alert.Link
	for _, l := range links {
		btn, ok := button(l)
		if !ok {
			continue
		}
		current = append(current, btn)
		if len(current) == alert.MaxButtonsPerRow {
			rows = append(rows, alert.ActionRow{Buttons: current})
			current = nil
		}
	}
	if len(current) > 0 {
		rows = append(rows, alert.ActionRow{Buttons: current})
	}
	return rows
}

func button(l alert.Link) (alert.Link, bool) {
	label := strings.TrimSpace(l.Label)
	if label == "" {
		return alert.Link{}, false
	}
	raw := strings.TrimSpace(l.URL)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return alert.Link{}, false
	}
	if r := []rune(label); len(r) > alert.MaxLabelLength {
		label = string(r[:alert.MaxLabelLength])
	}
	return alert.Link{Label: label, URL: raw}, true
}
