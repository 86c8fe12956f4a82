package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"alphaflow-alerts/internal/domain/alert"

	"github.com/go-faster/errors"
)

const (
	PlatformDiscord = "discord"

	discordBaseURL         = "https://discord.com/api/v10"
	discordRowType         = 1
	discordButtonType      = 2
	discordLinkButtonStyle = 5
)

// DiscordClient 以 Bot token 呼叫 create message API。
type DiscordClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewDiscordClient(token, baseURL string, httpClient *http.Client) *DiscordClient {
	if baseURL == "" {
		baseURL = discordBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &DiscordClient{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *DiscordClient) Platform() string { return PlatformDiscord }

type discordMessage struct {
	Embeds     []discordEmbed `json:"embeds"`
	Components []discordRow   `json:"components,omitempty"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields"`
	Footer      discordText    `json:"footer"`
	Author      discordAuthor  `json:"author"`
	Thumbnail   *discordImage  `json:"thumbnail,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordText struct {
	Text string `json:"text"`
}

type discordAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

type discordImage struct {
	URL string `json:"url"`
}

type discordRow struct {
	Type       int             `json:"type"`
	Components []discordButton `json:"components"`
}

type discordButton struct {
	Type  int    `json:"type"`
	Style int    `json:"style"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

func buildDiscordMessage(a alert.Alert, rows []alert.ActionRow) discordMessage {
	embed := discordEmbed{
		Title:       a.Title,
		Description: a.Description,
		Color:       a.Color,
		Fields:      make([]discordField, 0, len(a.Fields)),
		Footer:      discordText{Text: a.Footer},
		Author:      discordAuthor{Name: a.Author.Name, IconURL: a.Author.IconURL},
	}
	for _, f := range a.Fields {
		embed.Fields = append(embed.Fields, discordField(f))
	}
	if a.Thumbnail != "" {
		embed.Thumbnail = &discordImage{URL: a.Thumbnail}
	}

	msg := discordMessage{Embeds: []discordEmbed{embed}}
	for _, row := range rows {
		if len(row.Buttons) == 0 {
			continue
		}
		r := discordRow{Type: discordRowType}
		for _, b := range row.Buttons {
			r.Components = append(r.Components, discordButton{
				Type:  discordButtonType,
				Style: discordLinkButtonStyle,
				Label: b.Label,
				URL:   b.URL,
			})
		}
		msg.Components = append(msg.Components, r)
	}
	return msg
}

// Dispatch 將警報送到 channelID，狀態碼 >= 300 時回傳 *DispatchError。
func (c *DiscordClient) Dispatch(ctx context.Context, channelID string, a alert.Alert, rows []alert.ActionRow) error {
	if c == nil {
		return errors.New("discord client is nil")
	}
	if c.token == "" {
		return &DispatchError{Platform: PlatformDiscord, Payload: textPayload("discord bot token missing")}
	}

	body, err := json.Marshal(buildDiscordMessage(a, rows))
	if err != nil {
		return errors.Wrap(err, "encode discord message")
	}
	endpoint := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build discord request")
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DispatchError{Platform: PlatformDiscord, Payload: textPayload(err.Error())}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var payload any
		if err := json.Unmarshal(raw, &payload); err != nil {
			payload = textPayload(string(raw))
		}
		return &DispatchError{Platform: PlatformDiscord, Status: resp.StatusCode, Payload: payload}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
