package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"alphaflow-alerts/internal/application/enrich"
	"alphaflow-alerts/internal/application/render"
	"alphaflow-alerts/internal/infrastructure/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 儲存 HTTP API 及外部相依的執行設定。
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Levels   LevelsConfig   `yaml:"levels"`
	Links    LinksConfig    `yaml:"links"`
	Render   RenderConfig   `yaml:"render"`
	Notifier NotifierConfig `yaml:"notifier"`
	Auth     AuthConfig     `yaml:"auth"`
}

type HTTPConfig struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"` // 每秒請求數，0 代表不限制
	RateBurst int     `yaml:"rate_burst"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// LevelsConfig 為 nil 的欄位使用預設倍數；明確設為 0 會被保留。
type LevelsConfig struct {
	StopATR *float64 `yaml:"stop_atr"`
	TP1RR   *float64 `yaml:"tp1_rr"`
	TP2RR   *float64 `yaml:"tp2_rr"`
}

type LinksConfig struct {
	ChartBaseURL string `yaml:"chart_base_url"`
	ChartLabel   string `yaml:"chart_label"`
	Venue        string `yaml:"venue"`
	VenueLabel   string `yaml:"venue_label"`
	QuoteAsset   string `yaml:"quote_asset"`
	TradeBaseURL string `yaml:"trade_base_url"`
	// AffiliateRef 為 nil 時使用預設推薦碼；明確設為空字串則停用。
	AffiliateRef *string `yaml:"affiliate_ref"`
}

type RenderConfig struct {
	Brand       string            `yaml:"brand"`
	IconBaseURL string            `yaml:"icon_base_url"`
	Icons       map[string]string `yaml:"icons"`
}

type NotifierConfig struct {
	Platform string         `yaml:"platform"` // discord | telegram
	Timeout  time.Duration  `yaml:"timeout"`
	Discord  DiscordConfig  `yaml:"discord"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type DiscordConfig struct {
	BotToken    string `yaml:"bot_token"`
	BaseURL     string `yaml:"base_url"`
	ChannelFree string `yaml:"channel_free"`
	ChannelPro  string `yaml:"channel_pro"`
}

type TelegramConfig struct {
	Token    string `yaml:"token"`
	BaseURL  string `yaml:"base_url"`
	ChatFree string `yaml:"chat_free"`
	ChatPro  string `yaml:"chat_pro"`
}

type AuthConfig struct {
	WebhookSecret string `yaml:"webhook_secret"`
	APIKeyHash    string `yaml:"api_key_hash"`
}

const (
	PlatformDiscord  = "discord"
	PlatformTelegram = "telegram"
)

// LoadFromFile 從 YAML 組態檔載入設定，檔案不存在時僅使用預設值與環境變數。
func LoadFromFile(path string) (Config, error) {
	// 嘗試載入 .env 檔案（如果存在）
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg = applyDefaults(cfg)
	cfg = applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 檢查無法以預設值修正的設定。
func (c Config) Validate() error {
	switch c.Notifier.Platform {
	case PlatformDiscord, PlatformTelegram:
	default:
		return fmt.Errorf("unsupported notifier platform: %s", c.Notifier.Platform)
	}
	for _, v := range []*float64{c.Levels.StopATR, c.Levels.TP1RR, c.Levels.TP2RR} {
		if v != nil && *v < 0 {
			return fmt.Errorf("level multipliers must not be negative")
		}
	}
	return nil
}

func applyDefaults(cfg Config) Config {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.RateBurst == 0 {
		cfg.HTTP.RateBurst = 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 50
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 3
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 14
	}

	lv := enrich.DefaultLevelConfig()
	if cfg.Levels.StopATR == nil {
		cfg.Levels.StopATR = floatPtr(lv.StopATR)
	}
	if cfg.Levels.TP1RR == nil {
		cfg.Levels.TP1RR = floatPtr(lv.TP1RR)
	}
	if cfg.Levels.TP2RR == nil {
		cfg.Levels.TP2RR = floatPtr(lv.TP2RR)
	}

	links := render.DefaultLinkConfig()
	if cfg.Links.ChartBaseURL == "" {
		cfg.Links.ChartBaseURL = links.ChartBaseURL
	}
	if cfg.Links.ChartLabel == "" {
		cfg.Links.ChartLabel = links.ChartLabel
	}
	if cfg.Links.Venue == "" {
		cfg.Links.Venue = links.Venue
	}
	if cfg.Links.VenueLabel == "" {
		cfg.Links.VenueLabel = links.VenueLabel
	}
	if cfg.Links.QuoteAsset == "" {
		cfg.Links.QuoteAsset = links.QuoteAsset
	}
	if cfg.Links.TradeBaseURL == "" {
		cfg.Links.TradeBaseURL = links.TradeBaseURL
	}
	if cfg.Links.AffiliateRef == nil {
		ref := links.AffiliateRef
		cfg.Links.AffiliateRef = &ref
	}

	rc := render.DefaultConfig()
	if cfg.Render.Brand == "" {
		cfg.Render.Brand = rc.Brand
	}
	if cfg.Render.IconBaseURL == "" {
		cfg.Render.IconBaseURL = rc.IconBaseURL
	}
	if cfg.Render.Icons == nil {
		cfg.Render.Icons = rc.Icons
	}

	if cfg.Notifier.Platform == "" {
		cfg.Notifier.Platform = PlatformDiscord
	}
	if cfg.Notifier.Timeout == 0 {
		cfg.Notifier.Timeout = 20 * time.Second
	}
	if cfg.Notifier.Discord.BaseURL == "" {
		cfg.Notifier.Discord.BaseURL = "https://discord.com/api/v10"
	}
	if cfg.Notifier.Telegram.BaseURL == "" {
		cfg.Notifier.Telegram.BaseURL = "https://api.telegram.org"
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if val := os.Getenv("HTTP_ADDR"); val != "" {
		cfg.HTTP.Addr = val
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.HTTP.Addr = ":" + val
	}
	if val := os.Getenv("RATE_LIMIT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.HTTP.RateLimit = f
		}
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("LOG_FILE"); val != "" {
		cfg.Log.File = val
	}
	if val := os.Getenv("DEFAULT_STOP_ATR"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Levels.StopATR = floatPtr(f)
		}
	}
	if val := os.Getenv("DEFAULT_TP1_RR"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Levels.TP1RR = floatPtr(f)
		}
	}
	if val := os.Getenv("DEFAULT_TP2_RR"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Levels.TP2RR = floatPtr(f)
		}
	}
	// 空字串也有意義：停用推薦碼。
	if val, ok := os.LookupEnv("BINANCE_REF"); ok {
		ref := strings.TrimSpace(val)
		cfg.Links.AffiliateRef = &ref
	}
	if val := os.Getenv("NOTIFIER_PLATFORM"); val != "" {
		cfg.Notifier.Platform = strings.ToLower(val)
	}
	if val := os.Getenv("NOTIFIER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Notifier.Timeout = d
		}
	}
	if val := os.Getenv("DISCORD_BOT_TOKEN"); val != "" {
		cfg.Notifier.Discord.BotToken = val
	}
	if val := os.Getenv("DISCORD_CHANNEL_FREE"); val != "" {
		cfg.Notifier.Discord.ChannelFree = val
	}
	if val := os.Getenv("DISCORD_CHANNEL_PRO"); val != "" {
		cfg.Notifier.Discord.ChannelPro = val
	}
	if val := os.Getenv("TELEGRAM_TOKEN"); val != "" {
		cfg.Notifier.Telegram.Token = val
	}
	if val := os.Getenv("TELEGRAM_CHAT_FREE"); val != "" {
		cfg.Notifier.Telegram.ChatFree = val
	}
	if val := os.Getenv("TELEGRAM_CHAT_PRO"); val != "" {
		cfg.Notifier.Telegram.ChatPro = val
	}
	if val := os.Getenv("WEBHOOK_SECRET"); val != "" {
		cfg.Auth.WebhookSecret = val
	}
	if val := os.Getenv("API_KEY_HASH"); val != "" {
		cfg.Auth.APIKeyHash = val
	}
	return cfg
}

// LevelConfig 轉為補齊計算用的設定，未設定的欄位取預設值。
func (c Config) LevelConfig() enrich.LevelConfig {
	def := enrich.DefaultLevelConfig()
	return enrich.LevelConfig{
		StopATR: floatOr(c.Levels.StopATR, def.StopATR),
		TP1RR:   floatOr(c.Levels.TP1RR, def.TP1RR),
		TP2RR:   floatOr(c.Levels.TP2RR, def.TP2RR),
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// RenderConfig 轉為渲染設定。
func (c Config) RenderConfig() render.Config {
	ref := ""
	if c.Links.AffiliateRef != nil {
		ref = *c.Links.AffiliateRef
	}
	return render.Config{
		Brand:       c.Render.Brand,
		IconBaseURL: c.Render.IconBaseURL,
		Icons:       c.Render.Icons,
		Links: render.LinkConfig{
			ChartBaseURL: c.Links.ChartBaseURL,
			ChartLabel:   c.Links.ChartLabel,
			Venue:        c.Links.Venue,
			VenueLabel:   c.Links.VenueLabel,
			QuoteAsset:   c.Links.QuoteAsset,
			TradeBaseURL: c.Links.TradeBaseURL,
			AffiliateRef: ref,
		},
	}
}

// LogOptions 轉為 logger 設定。
func (c Config) LogOptions() logging.Options {
	return logging.Options{
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}

// Channels 回傳目前平台的 free/pro 頻道。
func (c Config) Channels() (free, pro string) {
	if c.Notifier.Platform == PlatformTelegram {
		return c.Notifier.Telegram.ChatFree, c.Notifier.Telegram.ChatPro
	}
	return c.Notifier.Discord.ChannelFree, c.Notifier.Discord.ChannelPro
}
