package conversation

import (
	"context"

	"AvisoBot/internal/menu"
	"AvisoBot/internal/models"
)

// Presenter 把状态机的输出渲染到具体通道
type Presenter interface {
	ShowMenu(ctx context.Context, userID models.UserID, prompt string, m menu.Menu) error
	ShowPrompt(ctx context.Context, userID models.UserID, prompt string) error
	ShowConfirmation(ctx context.Context, userID models.UserID, text string, actions ...models.Action) error
}

type EffectKind string

const (
	EffectMenu         EffectKind = "menu"
	EffectPrompt       EffectKind = "prompt"
	EffectConfirmation EffectKind = "confirmation"
)

// Effect 一次渲染调用的记录
type Effect struct {
	Kind    EffectKind
	UserID  models.UserID
	Prompt  string
	Menu    menu.Menu
	Actions []models.Action
}

// Recorder 缓存渲染结果的 Presenter，用于同步请求/响应的通道
type Recorder struct {
	Effects []Effect
}

func (r *Recorder) ShowMenu(_ context.Context, userID models.UserID, prompt string, m menu.Menu) error {
	r.Effects = append(r.Effects, Effect{Kind: EffectMenu, UserID: userID, Prompt: prompt, Menu: m})
	return nil
}

func (r *Recorder) ShowPrompt(_ context.Context, userID models.UserID, prompt string) error {
	r.Effects = append(r.Effects, Effect{Kind: EffectPrompt, UserID: userID, Prompt: prompt})
	return nil
}

func (r *Recorder) ShowConfirmation(_ context.Context, userID models.UserID, text string, actions ...models.Action) error {
	r.Effects = append(r.Effects, Effect{Kind: EffectConfirmation, UserID: userID, Prompt: text, Actions: actions})
	return nil
}

// Last 返回最后一次渲染，没有时返回零值
func (r *Recorder) Last() Effect {
	if len(r.Effects) == 0 {
		return Effect{}
	}
	return r.Effects[len(r.Effects)-1]
}
