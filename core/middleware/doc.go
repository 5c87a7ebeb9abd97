// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation through the X-API-Key header.
//   - rayid: a RayID per request, stored in the context for logger.WithRayID and
//     echoed in the X-Ray-ID response header.
//
// RayID is registered first so every later log line carries it.
package middleware
