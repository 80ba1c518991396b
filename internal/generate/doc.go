// Package generate tracks long-running generation tasks (function point and
// test case generation) and the multi-step workflow state that surrounds them.
//
// A Manager owns, for one execution context, the current task, a bounded
// history of finished tasks and an opaque WorkflowSnapshot. Every mutation is
// written through to a durable.Store as a single snapshot so that a workflow
// survives a reload; persistence is best effort and failures only reach the
// diagnostic logger.
//
// The Manager never performs the generation work itself. Calling code starts
// a task, drives the remote operation, and reports progress and the outcome
// back through UpdateTask, CompleteTask and FailTask.
package generate
