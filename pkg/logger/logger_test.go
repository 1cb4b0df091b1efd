package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"raisonne/pkg/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel)
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"invalid level", &config.LoggingConfig{Level: "loud"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "raisonne.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
			if tt.cfg.File != "" {
				_, statErr := os.Stat(tt.cfg.File)
				assert.NoError(t, statErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.
		WithField("page", 3).
		WithFields(map[string]interface{}{"url": "http://example.com", "records": 12}).
		WithError(errors.New("boom")).
		Info("chained fields")

	output := buf.String()
	assert.Contains(t, output, "chained fields")
	assert.Contains(t, output, `"page":3`)
	assert.Contains(t, output, `"url":"http://example.com"`)
	assert.Contains(t, output, `"records":12`)
	assert.Contains(t, output, `"error":"boom"`)
}

func TestWithFieldDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	_ = logger.WithField("child", true)
	logger.Info("parent")

	assert.False(t, strings.Contains(buf.String(), "child"))
}

func TestWithErrorNil(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	assert.Same(t, logger, logger.WithError(nil))
}

func TestLogRequestLevels(t *testing.T) {
	log := NewTestLogger()

	LogRequest(log, "GET", "http://example.com/ok", 200, 5)
	LogRequest(log, "GET", "http://example.com/missing", 404, 5)
	LogRequest(log, "GET", "http://example.com/broken", 503, 5)

	assert.Len(t, log.GetMessagesByLevel("DEBUG"), 1)
	assert.Len(t, log.GetMessagesByLevel("WARN"), 1)
	assert.Len(t, log.GetMessagesByLevel("ERROR"), 1)
}

func TestLogDownload(t *testing.T) {
	log := NewTestLogger()

	LogDownload(log, 17, "http://example.com/a.jpg", false, errors.New("status 500"))

	msgs := log.GetMessagesByLevel("ERROR")
	require.Len(t, msgs, 1)
	assert.Equal(t, 17, msgs[0].Fields["artwork_id"])
	assert.EqualError(t, msgs[0].Error, "status 500")
}

func TestTestLoggerSharesSink(t *testing.T) {
	log := NewTestLogger()

	log.WithField("a", 1).Info("child message")
	log.Warn("parent message")

	assert.True(t, log.HasMessage("child message"))
	assert.True(t, log.HasMessage("parent message"))
	assert.False(t, log.HasError())

	log.Clear()
	assert.Empty(t, log.GetMessages())
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "error"}))
	assert.NotNil(t, GetLogger())

	Debug("debug message")
	Info("info message")
	WithField("key", "value").Warn("with field")
	WithFields(map[string]interface{}{"k1": "v1"}).Info("with fields")
	WithError(errors.New("test")).Error("with error")
}
