package journal

import (
	"time"

	"go.uber.org/fx"

	"signal_bot/internal/config"
	"signal_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			NewLedger,
			func(cfg *config.Config) (*CSV, error) {
				sink, err := NewCSV(cfg.CSVDir, time.Now())
				if err != nil {
					return nil, err
				}
				logger.Info("trade log: %s", sink.Path())
				return sink, nil
			},
		),
	)
}
