package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// WithFields adds multiple fields to the global logger
func WithFields(fields map[string]interface{}) Logger {
	return GetLogger().WithFields(fields)
}

// LogRequest logs HTTP request information
func LogRequest(log Logger, method, url string, statusCode int, durationMs int64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		log.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 500:
		log.ErrorWithFields("HTTP request server error", fields)
	default:
		log.WarnWithFields("HTTP request returned non-success status", fields)
	}
}

// LogPage logs the outcome of crawling one catalogue page
func LogPage(log Logger, pageNum int, url string, rows, records int) {
	log.InfoWithFields("Catalogue page crawled", map[string]interface{}{
		"page":    pageNum,
		"url":     url,
		"rows":    rows,
		"records": records,
	})
}

// LogDownload logs image download outcomes
func LogDownload(log Logger, artworkID int, url string, success bool, err error) {
	entry := log.WithFields(map[string]interface{}{
		"artwork_id": artworkID,
		"url":        url,
		"success":    success,
	})

	if err != nil {
		entry.WithError(err).Error("Download failed")
	} else if success {
		entry.Debug("Download completed")
	} else {
		entry.Warn("Download skipped")
	}
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, config map[string]interface{}) {
	log := GetLogger().WithField("component", component)
	if len(config) > 0 {
		log = log.WithFields(config)
	}
	log.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(component string, reason string) {
	GetLogger().WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
