package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pollex.nl/library/internal/config"
	"pollex.nl/library/internal/logger"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(config.LogConfig{Level: "debug", Format: "json"}, &buf)

	log.Debug("record inserted", "table", "books", "id", 1)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "record inserted", line["msg"])
	assert.Equal(t, "books", line["table"])
}

func TestTextFormatLevelAndColor(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(config.LogConfig{Level: "warn"}, &buf)

	log.Info("dropped")
	assert.Empty(t, buf.String())

	log.Error("session rollback failed")
	// TextHandler quotes the escape sequence.
	assert.Contains(t, buf.String(), `\x1b[31msession rollback failed\x1b[0m`)
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(config.LogConfig{Level: "loud"}, &buf)

	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
