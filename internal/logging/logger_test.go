package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"development", Config{Level: "debug", Environment: EnvironmentDevelopment}, false},
		{"production", Config{Level: "info", Environment: EnvironmentProduction}, false},
		{"uppercase level", Config{Level: "WARN", Environment: EnvironmentProduction}, false},
		{"invalid level", Config{Level: "invalid", Environment: EnvironmentDevelopment}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	logger, err := NewLogger(Config{Level: "warn", Environment: EnvironmentProduction})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_ProductionWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := NewLogger(Config{
		Level:       "info",
		Environment: EnvironmentProduction,
		OutputPaths: []string{path},
	})
	require.NoError(t, err)

	logger.Info("synthesized", zap.String(FieldStack, "network"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.True(t, strings.HasPrefix(line, "{"))
	assert.Contains(t, line, `"stack":"network"`)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, EnvironmentDevelopment, cfg.Environment)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
}

func TestNewProductionLogger_DefaultLevel(t *testing.T) {
	logger, err := NewProductionLogger("")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewDevelopmentLogger(t *testing.T) {
	logger, err := NewDevelopmentLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestMustNewLogger_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNewLogger(Config{Level: "nope"})
	})
}

func TestContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	assert.NotNil(t, FromContext(context.Background()))

	ctx := WithLogger(context.Background(), logger)
	ctx = AddFields(ctx, zap.String(FieldRequestType, "Create"))
	FromContext(ctx).Info("handling")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "handling", entry.Message)
	assert.Equal(t, "Create", entry.ContextMap()[FieldRequestType])
}
