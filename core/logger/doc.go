// Package logger builds the zap logger used across dat-manager.
//
// Debug level selects zap's development preset; anything else starts from
// the production preset with the configured level. The console format
// switches to colored, human-readable output.
//
// WithRayID attaches the request id stored by the rayid middleware so every
// log line of one HTTP request can be correlated.
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("catalog processed", zap.Int("items", n))
package logger
