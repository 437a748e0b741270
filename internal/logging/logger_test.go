package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		level   zapcore.Level
		wantErr bool
	}{
		{"json info", Config{Level: "info", Format: "json"}, zapcore.InfoLevel, false},
		{"default format", Config{Level: "warn"}, zapcore.WarnLevel, false},
		{"console debug", Config{Level: "DEBUG", Format: "console"}, zapcore.DebugLevel, false},
		{"bad level", Config{Level: "loud", Format: "json"}, 0, true},
		{"bad format", Config{Level: "info", Format: "xml"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			assert.False(t, logger.Core().Enabled(tt.level-1))
		})
	}
}

func TestMustSetupReplacesGlobals(t *testing.T) {
	previous := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(previous) })

	logger := MustSetup(Config{Level: "error", Format: "json"})
	assert.Same(t, logger, zap.L())

	assert.Panics(t, func() { MustSetup(Config{Level: "nope"}) })
}
