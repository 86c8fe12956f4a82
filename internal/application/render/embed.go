package render

import (
	"fmt"
	"strings"

	"alphaflow-alerts/internal/domain/alert"
	"alphaflow-alerts/internal/domain/signal"
)

const (
	ColorBullish = 0x19FD8D
	ColorBearish = 0xF04F4F

	defaultReason = "Automated setup"

	rrSeparator        = " • "
	technicalSeparator = "  |  "
)

// Config 為渲染設定。Icons 以基礎幣別（完全比對）對應圖示檔名。
type Config struct {
	Brand       string
	IconBaseURL string
	Icons       map[string]string
	Links       LinkConfig
}

func DefaultConfig() Config {
	return Config{
		Brand:       "AlphaFlow",
		IconBaseURL: "https://raw.githubusercontent.com/spothq/cryptocurrency-icons/master/128/color/",
		Icons:       DefaultIcons(),
		Links:       DefaultLinkConfig(),
	}
}

// DefaultIcons lists the major assets that get a thumbnail.
func DefaultIcons() map[string]string {
	return map[string]string{
		"BTC":  "btc",
		"ETH":  "eth",
		"SOL":  "sol",
		"BNB":  "bnb",
		"XRP":  "xrp",
		"DOGE": "doge",
		"ADA":  "ada",
		"AVAX": "avax",
		"LINK": "link",
		"TON":  "ton",
	}
}

// Input 為已完成補齊計算的訊號。
type Input struct {
	Payload    signal.Payload
	Source     string
	Levels     signal.LevelSet
	RiskReward signal.RiskRewardPair
	Confidence int
}

// Renderer assembles alerts. It is immutable after construction and safe for
// concurrent use.
type Renderer struct {
	cfg Config
}

func NewRenderer(cfg Config) *Renderer {
	icons := make(map[string]string, len(cfg.Icons))
	for k, v := range cfg.Icons {
		icons[strings.ToUpper(k)] = v
	}
	cfg.Icons = icons
	return &Renderer{cfg: cfg}
}

// Links builds the reference links for a payload with the renderer's link config.
func (r *Renderer) Links(p signal.Payload) []alert.Link {
	return BuildLinks(p, r.cfg.Links)
}

// Render builds the alert: title, side color, the fixed field list and the
// optional risk/reward and technicals fields.
func (r *Renderer) Render(in Input) alert.Alert {
	p := in.Payload
	side := p.NormalizedSide()
	timeframe := orPlaceholder(p.Timeframe.String())

	color := ColorBearish
	if side.Bullish() {
		color = ColorBullish
	}
	description := p.Reason.String()
	if description == "" {
		description = defaultReason
	}

	fields := []alert.Field{
		{Name: "Price", Value: FormatNumber(in.Levels.Price), Inline: true},
		{Name: "Stop", Value: FormatNumber(in.Levels.Stop), Inline: true},
		{Name: "TP1", Value: FormatNumber(in.Levels.TP1), Inline: true},
		{Name: "TP2", Value: FormatNumber(in.Levels.TP2), Inline: true},
		{Name: "Confidence", Value: fmt.Sprintf("%d / 100", in.Confidence), Inline: true},
	}
	if rr := riskRewardText(in.RiskReward); rr != "" {
		fields = append(fields, alert.Field{Name: "Risk/Reward", Value: rr, Inline: true})
	}
	if tech := technicalsText(p.Technicals); tech != "" {
		fields = append(fields, alert.Field{Name: "Technicals", Value: tech, Inline: false})
	}

	source := in.Source
	if source == "" {
		source = signal.DefaultSource
	}
	out := alert.Alert{
		Title:       fmt.Sprintf("%s • %s • %s", orPlaceholder(p.Symbol.String()), side, timeframe),
		Color:       color,
		Description: description,
		Fields:      fields,
		Footer:      fmt.Sprintf("%s • %s", r.cfg.Links.VenueLabel, timeframe),
		Author:      alert.Author{Name: fmt.Sprintf("%s • %s", r.cfg.Brand, source)},
	}
	if icon := r.iconURL(p.Symbol.String()); icon != "" {
		out.Thumbnail = icon
		out.Author.IconURL = icon
	}
	return out
}

func (r *Renderer) iconURL(symbol string) string {
	base := strings.ToUpper(strings.TrimSpace(symbol))
	if b, ok := BaseAsset(base, r.cfg.Links.QuoteAsset); ok {
		base = b
	}
	slug, ok := r.cfg.Icons[base]
	if !ok || slug == "" {
		return ""
	}
	return r.cfg.IconBaseURL + slug + ".png"
}

func riskRewardText(rr signal.RiskRewardPair) string {
	var parts []string
	if rr.RR1 != nil {
		parts = append(parts, "TP1 RR "+FormatNumber(rr.RR1))
	}
	if rr.RR2 != nil {
		parts = append(parts, "TP2 RR "+FormatNumber(rr.RR2))
	}
	return strings.Join(parts, rrSeparator)
}

// technicalsText lists the valid indicators in a fixed order.
func technicalsText(t signal.Technicals) string {
	indicators := []struct {
		name  string
		value signal.Number
	}{
		{"RSI", t.RSI},
		{"EMA_FAST", t.EMAFast},
		{"EMA_SLOW", t.EMASlow},
		{"ATR", t.ATR},
	}
	var parts []string
	for _, ind := range indicators {
		if v, ok := ind.value.Value(); ok {
			parts = append(parts, ind.name+" "+formatFloat(v))
		}
	}
	return strings.Join(parts, technicalSeparator)
}
