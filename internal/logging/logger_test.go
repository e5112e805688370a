package logging

import (
	"os"
	"path/filepath"
	"testing"

	"slotbook/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	appCfg := config.AppConfig{Name: "slotbook-test", Environment: "test", Version: "0.0.1"}

	cases := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"Empty", "", zerolog.InfoLevel},
		{"Invalid", "nonsense", zerolog.InfoLevel},
		{"Warn", "warn", zerolog.WarnLevel},
		{"MixedCase", " DEBUG ", zerolog.DebugLevel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger, closer, err := New(config.LoggingConfig{Level: tc.level}, appCfg)
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.Nil(t, closer)
			assert.Equal(t, tc.want, logger.GetLevel())
		})
	}
}

func TestNewLoggerOutputs(t *testing.T) {
	appCfg := config.AppConfig{Name: "slotbook-test", Environment: "test", Version: "0.0.1"}

	t.Run("Stderr", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{Level: "info", Output: "stderr"}, appCfg)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.Nil(t, closer)
	})

	t.Run("Console", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{Level: "info", Format: "console"}, appCfg)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.Nil(t, closer)
	})

	t.Run("File", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "api.log")
		logger, closer, err := New(config.LoggingConfig{Level: "info", Output: "file", FilePath: logPath}, appCfg)
		require.NoError(t, err)
		require.NotNil(t, closer)

		logger.Info().Msg("startup")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "slotbook-test")
		assert.Contains(t, string(data), "startup")
	})

	t.Run("FileMissingPath", func(t *testing.T) {
		_, _, err := New(config.LoggingConfig{Output: "file"}, appCfg)
		assert.Error(t, err)
	})
}
