// Package service contains the orchestration layer: user registration
// and authentication, and the ownership-scoped task operations.
//
// Services take a resolved caller identity as an explicit argument rather
// than reading it from ambient request state, which keeps the ownership
// checks testable without any HTTP machinery.
package service
