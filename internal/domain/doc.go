// Package domain defines the core business entities and their validation
// rules: users (authentication principals) and the tasks they own.
package domain
