package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"furnistock/internal/pkg/logger"
)

func TestZapLogger_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := logger.FromZap(zap.New(core))

	log.Debug("não aparece", nil)
	log.With(map[string]interface{}{"item_id": int64(7)}).Info("Estoque ajustado.", map[string]interface{}{"new_quantity": 3})
	log.Error("Falha de persistência.", errors.New("connection reset"))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "Estoque ajustado.", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 7, fields["item_id"])
	assert.EqualValues(t, 3, fields["new_quantity"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "connection reset", entries[1].ContextMap()["error"])
}

func TestNewLogger_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		for _, level := range []string{"debug", "INFO", "warn", "error", "desconhecido"} {
			logger.NewLogger(level).Debug("ok", map[string]interface{}{"level": level})
			logger.NewDevelopmentLogger(level).Info("ok", nil)
		}
		logger.NewNopLogger().Warn("ok", nil)
	})
}
