package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	f, logger, err := FileLogger(logrus.InfoLevel, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	logger.WithField("component", "test").Info("hello")
	logger.Debug("hidden")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestFileLogger_NoPath(t *testing.T) {
	f, logger, err := FileLogger(logrus.WarnLevel, "")
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}
