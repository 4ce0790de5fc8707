// Package logger provides slog attribute helpers shared across gamekit
// packages.
//
// Helpers follow the empty Attr pattern: passing a nil error to Error
// yields an empty attribute that slog silently drops, so call sites never
// need nil checks:
//
//	log.Info("broadcast finished",
//		logger.Channel("lobby:42"),
//		logger.Count("delivered", n),
//		logger.Error(err), // no-op when err is nil
//	)
package logger
