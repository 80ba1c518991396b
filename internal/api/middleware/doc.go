// Package middleware holds the HTTP middleware shared by all routes: trace
// ids with request-scoped loggers, and bearer token authentication that
// resolves the caller's execution context.
package middleware
