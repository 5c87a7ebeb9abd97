// Package logger provides structured logging based on Zap.
//
// New builds a logger for the configured level and encoding (json for production,
// console for local runs). WithRayID attaches the request RayID set by the rayid
// middleware, and WithJob attaches an import job id, so every line about one
// request or one import can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
