// Package middleware contains HTTP middleware for the Fiber application.
//
// Subpackages:
//   - rayid: assigns a per-request ray id used for log correlation
//   - auth: API-key gate for the operator-facing sync endpoints
package middleware
