// Package events carries task lifecycle notifications from the generation
// manager to whoever is interested in them.
//
// The manager emits a TaskEvent after every state transition it persists.
// Handlers are registered on an EventEmitter; a failing handler never
// interrupts the transition that produced the event.
package events
