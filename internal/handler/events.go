package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"AvisoBot/internal/conversation"
	"AvisoBot/internal/menu"
	"AvisoBot/internal/models"
)

// 入站 / 出站消息类型
const (
	wireStart   = "start"
	wireBegin   = "begin"
	wireSelect  = "select"
	wireText    = "text"
	wireCancel  = "cancel"
	wireRetry   = "retry"
	wireMenu    = "menu"
	wirePrompt  = "prompt"
	wireConfirm = "confirmation"
)

// eventRequest POST /report/events 请求体
type eventRequest struct {
	UserID string          `json:"user_id" binding:"required"`
	Type   string          `json:"type" binding:"required"`
	Data   json.RawMessage `json:"data"`
}

type selectData struct {
	Category string `json:"category"`
	Value    *int   `json:"value"`
}

type textData struct {
	Text string `json:"text"`
}

// decodeEvent 将传输层消息一次性解码为类型化事件
func decodeEvent(userID models.UserID, typ string, raw json.RawMessage) (models.Event, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case wireStart:
		return models.Start(userID), nil
	case wireBegin:
		return models.BeginRequested(userID), nil
	case wireCancel:
		return models.CancelRequested(userID), nil
	case wireRetry:
		return models.RetryRequested(userID), nil
	case wireSelect:
		var d selectData
		if err := json.Unmarshal(raw, &d); err != nil {
			return models.Event{}, fmt.Errorf("invalid select data: %w", err)
		}
		if d.Category == "" || d.Value == nil {
			return models.Event{}, fmt.Errorf("select requires category and value")
		}
		return models.MenuSelection(userID, models.Category(d.Category), *d.Value), nil
	case wireText:
		return models.TextSubmitted(userID, decodeText(raw)), nil
	}
	return models.Event{}, fmt.Errorf("unsupported event type %q", typ)
}

// decodeText 接受 {"text": "..."} 或直接的 JSON 字符串；空白文本交给状态机判定
func decodeText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var d textData
	_ = json.Unmarshal(raw, &d)
	return d.Text
}

type wireAction struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

type menuPayload struct {
	Prompt   string          `json:"prompt"`
	Category models.Category `json:"category"`
	Rows     [][]menu.Choice `json:"rows"`
}

type promptPayload struct {
	Prompt string `json:"prompt"`
}

type confirmationPayload struct {
	Text    string       `json:"text"`
	Actions []wireAction `json:"actions"`
}

// wireEffect HTTP 响应中的一条输出
type wireEffect struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func menuMessage(prompt string, m menu.Menu) (string, interface{}) {
	return wireMenu, menuPayload{Prompt: prompt, Category: m.Category, Rows: m.Rows}
}

func promptMessage(prompt string) (string, interface{}) {
	return wirePrompt, promptPayload{Prompt: prompt}
}

func confirmationMessage(text string, actions []models.Action) (string, interface{}) {
	wa := make([]wireAction, 0, len(actions))
	for _, a := range actions {
		wa = append(wa, wireAction{Label: a.Label, Type: a.Trigger.String()})
	}
	return wireConfirm, confirmationPayload{Text: text, Actions: wa}
}

func encodeEffects(effects []conversation.Effect) []wireEffect {
	out := make([]wireEffect, 0, len(effects))
	for _, e := range effects {
		var typ string
		var data interface{}
		switch e.Kind {
		case conversation.EffectMenu:
			typ, data = menuMessage(e.Prompt, e.Menu)
		case conversation.EffectPrompt:
			typ, data = promptMessage(e.Prompt)
		default:
			typ, data = confirmationMessage(e.Prompt, e.Actions)
		}
		out = append(out, wireEffect{Type: typ, Data: data})
	}
	return out
}
