// Package durable defines the persistence surface that backs the generation
// workflow manager. A Store holds a single serialized snapshot under one key
// and knows nothing about its contents.
//
// Backends live here (memory, file) and under internal/platform (postgres,
// redis). Every backend reports failures as error values; callers decide
// whether a failure is fatal.
package durable
