// Package store defines the persistence interfaces for users and tasks,
// along with the sentinel errors shared by all store implementations.
//
// The interfaces here are the boundary between the service layer and the
// backing database: services depend only on these interfaces and on the
// errors they document, never on a concrete implementation.
package store
