// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app; this package only defines the port, the API
// key and the graceful shutdown window, and is embedded by core/config.
package server
