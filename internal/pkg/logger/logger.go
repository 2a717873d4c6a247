package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
	// With retorna um Logger que adiciona os campos a todas as entradas.
	With(fields map[string]interface{}) Logger
}

// ZapLogger é a implementação concreta da interface Logger sobre go.uber.org/zap.
type ZapLogger struct {
	zl *zap.Logger
}

// NewLogger cria um Logger com saída JSON no stderr, filtrando pelo nível informado
// ("debug", "info", "warn", "error"). Nível desconhecido vira "info".
// Esta função é chamada no main.go.
func NewLogger(level string) Logger {
	return newZapLogger(level, "json")
}

// NewDevelopmentLogger usa o encoder de console, mais legível no terminal.
func NewDevelopmentLogger(level string) Logger {
	return newZapLogger(level, "console")
}

// NewNopLogger descarta tudo. Útil em testes de carga e benchmarks.
func NewNopLogger() Logger {
	return &ZapLogger{zl: zap.NewNop()}
}

// FromZap embrulha um *zap.Logger já configurado (ex.: observer em testes).
func FromZap(zl *zap.Logger) Logger {
	return &ZapLogger{zl: zl}
}

func newZapLogger(level, format string) *ZapLogger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), parseLevel(level))
	// AddCallerSkip(1): o caller reportado é quem chamou o wrapper, não o wrapper.
	return &ZapLogger{zl: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// Implementações da Interface Logger

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Error(msg string, err error) {
	l.zl.Error(msg, zap.Error(err))
}

// Fatal registra e encerra o processo (os.Exit(1)).
func (l *ZapLogger) Fatal(msg string, err error) {
	l.zl.Fatal(msg, zap.Error(err))
}

func (l *ZapLogger) With(fields map[string]interface{}) Logger {
	return &ZapLogger{zl: l.zl.With(toZapFields(fields)...)}
}

// Sync descarrega o buffer do zap. Erros de sync em stderr são ignorados.
func (l *ZapLogger) Sync() {
	_ = l.zl.Sync()
}
