package handlers

import (
	"context"

	"AvisoBot/internal/menu"
	"AvisoBot/internal/models"
	"AvisoBot/pkg/websocket"
)

// hubPresenter 通过 websocket 推送给用户的所有在线连接
type hubPresenter struct {
	hub *websocket.Hub
}

func (p hubPresenter) send(userID models.UserID, typ string, payload interface{}) error {
	msg, err := websocket.NewMessage(typ, payload)
	if err != nil {
		return err
	}
	msg.To = string(userID)
	_, err = p.hub.SendToUser(string(userID), msg)
	return err
}

func (p hubPresenter) ShowMenu(_ context.Context, userID models.UserID, prompt string, m menu.Menu) error {
	typ, payload := menuMessage(prompt, m)
	return p.send(userID, typ, payload)
}

func (p hubPresenter) ShowPrompt(_ context.Context, userID models.UserID, prompt string) error {
	typ, payload := promptMessage(prompt)
	return p.send(userID, typ, payload)
}

func (p hubPresenter) ShowConfirmation(_ context.Context, userID models.UserID, text string, actions ...models.Action) error {
	typ, payload := confirmationMessage(text, actions)
	return p.send(userID, typ, payload)
}
