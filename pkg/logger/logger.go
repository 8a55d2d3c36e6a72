package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var InfoLogger, FatalLogger *zap.Logger

var (
	serviceName = "default"
)

// Config: куда и с каким уровнем писать.
type Config struct {
	Dir   string // пусто: только консоль
	Level string // debug | info | warn | error
}

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

// Init поднимает глобальные логгеры: файл trading_bot_<yymmddHHMMSS>.log + консоль.
// Возвращает путь к файлу лога и функцию для Sync.
func Init(cfg Config) (string, func(), error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return "", nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level),
	}

	var path string
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return "", nil, fmt.Errorf("create log dir: %w", err)
		}
		path = filepath.Join(cfg.Dir, "trading_bot_"+time.Now().Format("060102150405")+".log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return "", nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), level))
	}

	l := zap.New(zapcore.NewTee(cores...))
	Use(l)

	return path, func() { _ = l.Sync() }, nil
}

// Use подменяет глобальные логгеры (тесты, observer).
func Use(l *zap.Logger) {
	InfoLogger = l
	FatalLogger = l
}

func Debug(format string, args ...interface{}) {
	log().Debug(fmt.Sprintf(format, args...))
}

func Info(format string, args ...interface{}) {
	log().Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	log().Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	log().Error(fmt.Sprintf(format, args...))
}

// Critical: error-уровень с пометкой critical, без выхода из процесса.
func Critical(format string, args ...interface{}) {
	log().Error(fmt.Sprintf(format, args...), zap.Bool("critical", true))
}

func Fatal(format string, args ...interface{}) {
	if FatalLogger == nil {
		panic("FatalLogger is not initialized")
	}

	msg := fmt.Sprintf(format, args...)
	FatalLogger.With(
		zap.String("service", serviceName),
	).Fatal(msg)
}

func log() *zap.Logger {
	if InfoLogger == nil {
		panic("InfoLogger is not initialized")
	}
	return InfoLogger.With(zap.String("service", serviceName))
}
