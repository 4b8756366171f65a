package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const defaultTelegramAPI = "https://api.telegram.org"

type TelegramConfig struct {
	Token   string
	BaseURL string // 默认 https://api.telegram.org
}

// Telegram 通过 Bot API sendMessage 投递纯文本消息
type Telegram struct {
	cfg    TelegramConfig
	client *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewTelegram(cfg TelegramConfig, client *http.Client) *Telegram {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTelegramAPI
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = http.DefaultClient
	}
	return &Telegram{cfg: cfg, client: client}
}

// botAPI 首次投递时创建客户端（会调用 getMe），失败不缓存，下次重试
func (t *Telegram) botAPI() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(t.cfg.Token, t.cfg.BaseURL+"/bot%s/%s", t.client)
	if err != nil {
		return nil, t.redact("getMe", err)
	}
	t.bot = bot
	return bot, nil
}

// newMessage 数字目标按 chat id 发送，否则按频道用户名（@name）
func newMessage(destination, text string) tgbotapi.MessageConfig {
	if id, err := strconv.ParseInt(destination, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}
	return tgbotapi.NewMessageToChannel(destination, text)
}

// Notify tgbotapi 不接受 context，调用在独立 goroutine 中进行，ctx 结束即返回；
// 底层请求由 http.Client 的超时兜底
func (t *Telegram) Notify(ctx context.Context, destination, text string) error {
	if t.cfg.Token == "" {
		return fmt.Errorf("telegram token not configured")
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return fmt.Errorf("telegram destination not configured")
	}

	done := make(chan error, 1)
	go func() {
		bot, err := t.botAPI()
		if err == nil {
			if _, err = bot.Send(newMessage(destination, text)); err != nil {
				err = t.redact("sendMessage", err)
			}
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("telegram sendMessage: %w", ctx.Err())
	}
}

// redact 请求 URL 中带 token，错误信息不能原样透传
func (t *Telegram) redact(method string, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("telegram %s: %d: %s", method, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("telegram %s: %s", method, strings.ReplaceAll(err.Error(), t.cfg.Token, "<token>"))
}
