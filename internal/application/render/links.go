package render

import (
	"net/url"
	"strings"

	"alphaflow-alerts/internal/domain/alert"
	"alphaflow-alerts/internal/domain/signal"
)

// LinkConfig 為圖表與交易所連結設定。
type LinkConfig struct {
	ChartBaseURL string
	ChartLabel   string
	Venue        string // 圖表代號前綴，如 BINANCE
	VenueLabel   string
	QuoteAsset   string
	TradeBaseURL string
	AffiliateRef string // 空字串代表不附推薦碼
}

func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		ChartBaseURL: "https://www.tradingview.com/chart/",
		ChartLabel:   "TradingView",
		Venue:        "BINANCE",
		VenueLabel:   "Binance",
		QuoteAsset:   "USDT",
		TradeBaseURL: "https://www.binance.com/en/trade/",
		AffiliateRef: "1164241722",
	}
}

// BuildLinks returns the chart link followed by the venue trade link,
// omitting whichever cannot be built.
func BuildLinks(p signal.Payload, cfg LinkConfig) []alert.Link {
	var links []alert.Link
	if ticker := chartTicker(p, cfg); ticker != "" {
		links = append(links, alert.Link{
			Label: cfg.ChartLabel,
			URL:   cfg.ChartBaseURL + "?symbol=" + ticker,
		})
	}
	if base, ok := BaseAsset(p.Symbol.String(), cfg.QuoteAsset); ok {
		links = append(links, alert.Link{
			Label: cfg.VenueLabel,
			URL:   tradeURL(base, cfg),
		})
	}
	return links
}

// chartTicker prefers an explicit "VENUE:SYMBOL" ticker over the configured venue.
func chartTicker(p signal.Payload, cfg LinkConfig) string {
	if tv := p.TVSymbol.String(); strings.Contains(tv, ":") {
		return tv
	}
	sym := strings.ToUpper(strings.TrimSpace(p.Symbol.String()))
	if sym == "" || cfg.Venue == "" {
		return ""
	}
	return cfg.Venue + ":" + sym
}

// BaseAsset strips the quote suffix from an upper-cased symbol. ok is false
// when the symbol is not quoted in quote.
func BaseAsset(symbol, quote string) (string, bool) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	quote = strings.ToUpper(quote)
	if quote == "" || !strings.HasSuffix(sym, quote) {
		return "", false
	}
	base := strings.TrimSuffix(sym, quote)
	if base == "" {
		return "", false
	}
	return base, true
}

func tradeURL(base string, cfg LinkConfig) string {
	u := cfg.TradeBaseURL + base + "_" + strings.ToUpper(cfg.QuoteAsset)
	if ref := strings.TrimSpace(cfg.AffiliateRef); ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}
	return u
}
