// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber application from these values: listen
// address, body limit and read timeout. The API key is consumed by the auth
// middleware.
package server
