// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It exposes the task manager of the caller's
// execution context to the browser UI: task lifecycle under /api/tasks and
// the workflow snapshot under /api/state.
package api
