package notify

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/config"
	"signal_bot/pkg/logger"
)

// New: Telegram, если заданы токен и чат, иначе Stdout. Ошибка Telegram не валит старт.
func New(lc fx.Lifecycle, cfg *config.Config) Notifier {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		return NewStdout()
	}
	tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		logger.Error("telegram init failed, falling back to stdout: %v", err)
		return NewStdout()
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return tg.Start(context.Background()) },
		OnStop: func(ctx context.Context) error {
			tg.Stop()
			return nil
		},
	})
	return tg
}

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(New),
	)
}
