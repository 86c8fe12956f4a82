// Package notify 將渲染好的警報送至 Discord 或 Telegram。
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"alphaflow-alerts/internal/domain/alert"
	"alphaflow-alerts/internal/infrastructure/config"

	"github.com/go-faster/errors"
)

const defaultTimeout = 20 * time.Second

// Dispatcher 為單次送出的通知後端。
type Dispatcher interface {
	Platform() string
	Dispatch(ctx context.Context, channelID string, a alert.Alert, rows []alert.ActionRow) error
}

// DispatchError 描述平台拒絕或無法送達的請求。Status 為 0 代表沒有取得 HTTP 回應。
type DispatchError struct {
	Platform string
	Status   int
	Payload  any
}

func (e *DispatchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s send failed: %v", e.Platform, e.Payload)
	}
	return fmt.Sprintf("%s send failed status=%d", e.Platform, e.Status)
}

func textPayload(s string) map[string]any {
	return map[string]any{"text": s}
}

// New 依 notifier.platform 建立對應的後端。
func New(cfg config.NotifierConfig) (Dispatcher, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch cfg.Platform {
	case config.PlatformDiscord, "":
		return NewDiscordClient(cfg.Discord.BotToken, cfg.Discord.BaseURL, client), nil
	case config.PlatformTelegram:
		return NewTelegramClient(cfg.Telegram.Token, cfg.Telegram.BaseURL, client), nil
	default:
		return nil, errors.Errorf("unsupported notifier platform %q", cfg.Platform)
	}
}
