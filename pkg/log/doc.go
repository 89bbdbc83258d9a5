// Package log provides structured logging for the telemetry pipeline.
//
// The pipeline is a side channel inside a host application, so logging is its
// only failure surface: every swallowed error in the recording and flush paths
// is reported here and nowhere else.
//
// # Overview
//
// Loggers are constructed with functional options and carry structured fields:
//
//	logger := log.NewLogger(
//		log.WithLevel(log.DebugLevel),
//		log.WithFormatter(&log.JSONFormatter{}),
//	)
//	logger = logger.With(log.Component("tracking"))
//	logger.Warn("persist failed", log.Err(err), log.Int("pending", n))
//
// Formatters render entries (TextFormatter for humans, JSONFormatter for
// collection) and Outputs write them (ConsoleOutput by default, WriterOutput
// for capture in tests). Components receive injected Logger instances; there
// is no package-level global.
package log
