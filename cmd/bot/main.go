package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"signal_bot/internal/config"
	"signal_bot/internal/exchange"
	"signal_bot/internal/health"
	"signal_bot/internal/journal"
	"signal_bot/internal/metrics"
	"signal_bot/internal/notify"
	"signal_bot/internal/runner"
	"signal_bot/internal/strategy"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.SetServiceName(cfg.ServiceName)
	tracing.SetServiceName(cfg.ServiceName)

	logPath, syncLogs, err := logger.Init(logger.Config{Dir: cfg.LogDir, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer syncLogs()
	logger.Info("log file: %s", logPath)

	_, closeTracer, err := tracing.InitTracer(tracing.Config{Host: cfg.Tracing.Host, Port: cfg.Tracing.Port})
	if err != nil {
		logger.Error("tracer init failed, spans disabled: %v", err)
	} else {
		defer closeTracer()
	}

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: logger.InfoLogger}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Supply(cfg),
		metrics.Module(),
		health.Module(),
		exchange.Module(),
		journal.Module(),
		notify.Module(),
		strategy.Module(),
		runner.Module(),
	)
	app.Run()
}
