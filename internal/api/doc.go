// Package api provides the HTTP handlers for the task-list service:
// registration and login, and the ownership-scoped task endpoints.
//
// Handlers never read the caller's identity from request input; it is
// resolved by the authentication middleware and passed through the
// request context as a user ID.
package api
