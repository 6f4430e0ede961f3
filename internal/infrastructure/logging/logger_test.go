package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			logger, err := New(Config{Level: level, OutputPaths: []string{"stderr"}})
			require.NoError(t, err)
			require.NotNil(t, logger.Logger)
		})
	}
}

func TestComponentTagsEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := &Logger{Logger: zap.New(core)}

	logger.Component("window").Info("opened", zap.String("app_id", "notepad"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "window", entries[0].LoggerName)
	assert.Equal(t, "window", entries[0].ContextMap()["component"])
	assert.Equal(t, "notepad", entries[0].ContextMap()["app_id"])
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Info("ignored")
		Nop().Component("x").Warn("ignored")
	})
}
