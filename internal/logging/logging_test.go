package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushwahaPrashant24/blocktube/internal/config"
)

func TestSetup_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{config.LogFormatText, "msg=hello"},
		{config.LogFormatJSON, `"msg":"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer

			logger := SetupWithWriter(&config.Config{LogLevel: "info", LogFormat: tt.format}, &buf)
			require.NotNil(t, logger)

			logger.Info("hello")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestSetup_SetsDefault(t *testing.T) {
	logger := Setup(&config.Config{LogLevel: "info", LogFormat: "text"})
	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.Config
		shown  []string
		hidden []string
	}{
		{
			name:  "debug shows debug",
			cfg:   config.Config{LogLevel: "debug"},
			shown: []string{"dbg", "inf"},
		},
		{
			name:   "info hides debug",
			cfg:    config.Config{LogLevel: "info"},
			shown:  []string{"inf"},
			hidden: []string{"dbg"},
		},
		{
			name:   "quiet keeps errors only",
			cfg:    config.Config{LogLevel: "debug", Quiet: true},
			shown:  []string{"err"},
			hidden: []string{"dbg", "inf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := SetupWithWriter(&tt.cfg, &buf)
			logger.Debug("dbg")
			logger.Info("inf")
			logger.Error("err")

			for _, s := range tt.shown {
				assert.Contains(t, buf.String(), "msg="+s)
			}

			for _, s := range tt.hidden {
				assert.NotContains(t, buf.String(), "msg="+s)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	FromContext(ctx).Info("hi", slog.String("document", "a.json"))
	assert.Contains(t, buf.String(), "document=a.json")
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
