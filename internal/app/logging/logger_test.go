package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Info("fetched transcript", "url", "http://example.com/a.json", "utterances", 3)
	logger.Warn("summary skipped", "episode", "Ep 1")
	logger.Error("fetch failed", "url", "http://example.com/b.json")

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "fetched transcript", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "http://example.com/a.json", entries[0].ContextMap()["url"])
	assert.EqualValues(t, 3, entries[0].ContextMap()["utterances"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestNewLogger(t *testing.T) {
	for _, development := range []bool{true, false} {
		logger, err := NewLogger(development)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

func TestNopLogger(t *testing.T) {
	var l Logger = NewNopLogger()
	assert.NotPanics(t, func() {
		l.Info("ignored", "k", "v")
	})
}
