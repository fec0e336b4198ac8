// Package middleware groups the Fiber middleware used by the HTTP server.
//
//   - auth: API key check on every protected route
//   - rayid: per-request id stored in locals and echoed in a response header
package middleware
