package logging

import (
	"bytes"
	"testing"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notesai/notesai/internal/config"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("strategy", "structured").Int("chars", 11).Msg("extracted pdf text")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"strategy":"structured"`)
	assert.Contains(t, out, `"chars":11`)
	assert.Contains(t, out, "extracted pdf text")
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.LogConfig{Level: "DEBUG", Format: "console"}, &buf)
	require.NoError(t, err)

	logger.Debug().Str("strategy", "raw").Msg("strategy produced no text")
	assert.Contains(t, buf.String(), "strategy produced no text")
	assert.Contains(t, buf.String(), "raw")
}

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		name string
		want log.Level
	}{
		{name: "", want: log.InfoLevel},
		{name: "trace", want: log.TraceLevel},
		{name: "debug", want: log.DebugLevel},
		{name: "info", want: log.InfoLevel},
		{name: " Warn ", want: log.WarnLevel},
		{name: "error", want: log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewWithWriter(config.LogConfig{Level: tt.name, Format: "json"}, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.Level)
		})
	}
}

func TestNewWithWriter_Invalid(t *testing.T) {
	_, err := NewWithWriter(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = NewWithWriter(config.LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Error().Str("detail", "boom").Msg("dropped")
	})
}
