// Package logger provides a structured logging interface for the catalogue crawler.
//
// It wraps zerolog with:
//   - levelled logging (Debug, Info, Warn, Error, Fatal)
//   - immutable child loggers carrying fields
//   - coloured console output on stderr, optionally mirrored to a file
//   - a global instance for command-line entry points
//
// Basic Usage:
//
//	err := logger.Initialize(&config.LoggingConfig{Level: "info"})
//
//	logger.Info("Crawl started")
//	logger.WithField("url", seedURL).Info("Fetching seed page")
//
// Components take a Logger in their constructor so tests can pass
// NewNopLogger or NewTestLogger:
//
//	log := logger.NewTestLogger()
//	s := scraper.New(cfg, client, pool, log)
//	...
//	if log.HasError() { ... }
package logger
