// Package server holds the HTTP server configuration.
//
// The actual Fiber application is assembled in the start command; this
// package only owns the configuration surface so that core/config can
// aggregate it without importing Fiber.
package server
