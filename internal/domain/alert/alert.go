// Package alert 定義渲染後、交給通知平台的警報結構。
package alert

// Alert 為平台無關的警報內容。
type Alert struct {
	Title       string  `json:"title"`
	Color       int     `json:"color"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
	Footer      string  `json:"footer"`
	Author      Author  `json:"author"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
}

// Field 為警報中的一列名稱/數值。
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Author struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

// Link 為一個帶標籤的參考連結。
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ActionRow groups up to MaxButtonsPerRow link buttons.
type ActionRow struct {
	Buttons []Link `json:"buttons"`
}

const (
	MaxButtonsPerRow = 5
	MaxLabelLength   = 80
)
