// Package middleware holds the HTTP middleware wrapped around the streamable
// HTTP endpoint: request metrics, security headers and CORS.
package middleware
