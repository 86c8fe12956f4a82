package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"

	"alphaflow-alerts/internal/domain/alert"

	"github.com/go-faster/errors"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	PlatformTelegram = "telegram"

	telegramBaseURL = "https://api.telegram.org"
)

// TelegramClient 以 HTML 文字加 inline keyboard 送出警報。
type TelegramClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewTelegramClient(token, baseURL string, httpClient *http.Client) *TelegramClient {
	if baseURL == "" {
		baseURL = telegramBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &TelegramClient{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *TelegramClient) Platform() string { return PlatformTelegram }

type responseKey struct{}

// botResponse 記下 Bot API 的狀態碼與錯誤主體，bot 套件的錯誤只保留描述文字。
type botResponse struct {
	status int
	body   []byte
}

type responseRecorder struct {
	client *http.Client
}

func (r responseRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return resp, err
	}
	rec, ok := req.Context().Value(responseKey{}).(*botResponse)
	if !ok {
		return resp, nil
	}
	rec.status = resp.StatusCode
	if resp.StatusCode >= 300 {
		raw, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		rec.body = raw
		resp.Body = io.NopCloser(bytes.NewReader(raw))
	}
	return resp, nil
}

// payload 優先回傳平台的 JSON 錯誤主體。
func (r *botResponse) payload(err error) any {
	if len(r.body) > 0 {
		var decoded any
		if json.Unmarshal(r.body, &decoded) == nil {
			return decoded
		}
		return textPayload(string(r.body))
	}
	return textPayload(err.Error())
}

// Dispatch 送出一則訊息到 chat channelID（數字 ID 或 @channel）。
func (c *TelegramClient) Dispatch(ctx context.Context, channelID string, a alert.Alert, rows []alert.ActionRow) error {
	if c == nil {
		return errors.New("telegram client is nil")
	}
	if c.token == "" {
		return &DispatchError{Platform: PlatformTelegram, Payload: textPayload("telegram token missing")}
	}

	b, err := bot.New(c.token,
		bot.WithSkipGetMe(),
		bot.WithServerURL(c.baseURL),
		bot.WithHTTPClient(c.httpClient.Timeout, responseRecorder{client: c.httpClient}),
	)
	if err != nil {
		return errors.Wrap(err, "init telegram bot")
	}

	params := &bot.SendMessageParams{
		ChatID:    channelID,
		Text:      telegramText(a),
		ParseMode: models.ParseModeHTML,
	}
	if kb := telegramKeyboard(rows); kb != nil {
		params.ReplyMarkup = kb
	}

	rec := &botResponse{}
	ctx = context.WithValue(ctx, responseKey{}, rec)
	if _, err := b.SendMessage(ctx, params); err != nil {
		return &DispatchError{Platform: PlatformTelegram, Status: rec.status, Payload: rec.payload(err)}
	}
	return nil
}

// telegramText renders the alert as Telegram HTML.
func telegramText(a alert.Alert) string {
	var sb strings.Builder
	sb.WriteString("<b>" + html.EscapeString(a.Title) + "</b>\n")
	if a.Author.Name != "" {
		sb.WriteString("<i>" + html.EscapeString(a.Author.Name) + "</i>\n")
	}
	if a.Description != "" {
		sb.WriteString("\n" + html.EscapeString(a.Description) + "\n")
	}
	if len(a.Fields) > 0 {
		sb.WriteString("\n")
	}
	for _, f := range a.Fields {
		sb.WriteString("<b>" + html.EscapeString(f.Name) + ":</b> " + html.EscapeString(f.Value) + "\n")
	}
	if a.Footer != "" {
		sb.WriteString("\n<i>" + html.EscapeString(a.Footer) + "</i>")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func telegramKeyboard(rows []alert.ActionRow) *models.InlineKeyboardMarkup {
	var keyboard [][]models.InlineKeyboardButton
	for _, row := range rows {
		var buttons []models.InlineKeyboardButton
		for _, link := range row.Buttons {
			buttons = append(buttons, models.InlineKeyboardButton{Text: link.Label, URL: link.URL})
		}
		if len(buttons) > 0 {
			keyboard = append(keyboard, buttons)
		}
	}
	if len(keyboard) == 0 {
		return nil
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
