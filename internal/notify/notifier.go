package notify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/pkg/logger"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

const (
	pollTimeoutSec = 25
	// таймаут клиента больше long-polling, иначе getUpdates рвётся на каждом опросе
	clientTimeout = (pollTimeoutSec + 10) * time.Second
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: clientTimeout}
}

// StatusFunc собирает текст ответа на /status.
type StatusFunc func(ctx context.Context) string

// Telegram: пассивный нотифайер + обработка одной команды /status.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64

	mu     sync.RWMutex
	status StatusFunc
	cancel context.CancelFunc
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPIWithClient(token, tgbot.APIEndpoint, newHTTPClient())
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		logger.Warn("telegram send: %v", err)
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

func (t *Telegram) SetStatus(fn StatusFunc) {
	t.mu.Lock()
	t.status = fn
	t.mu.Unlock()
}

func (t *Telegram) handleStatus(ctx context.Context) {
	t.mu.RLock()
	fn := t.status
	t.mu.RUnlock()
	if fn == nil {
		t.Send("статус недоступен")
		return
	}
	t.Send(fn(ctx))
}

// Start: long-polling сообщений, отвечает только в свой чат.
func (t *Telegram) Start(parent context.Context) error {
	if t == nil || t.bot == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel

	u := tgbot.NewUpdate(0)
	u.Timeout = pollTimeoutSec
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				if upd.Message == nil || upd.Message.Chat == nil ||
					upd.Message.Chat.ID != t.chatID || !upd.Message.IsCommand() {
					continue
				}
				switch upd.Message.Command() {
				case "status":
					go t.handleStatus(ctx)
				}
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {
	if t == nil || t.bot == nil {
		return
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.bot.StopReceivingUpdates()
}

// Stdout: всё пишет в лог.
type Stdout struct{}

func NewStdout() *Stdout                           { return &Stdout{} }
func (s *Stdout) Send(msg string)                  { logger.Info("notify: %s", msg) }
func (s *Stdout) Sendf(format string, args ...any) { s.Send(fmt.Sprintf(format, args...)) }
