// Package domain holds the core types and contracts of the backend:
// users, their connected content sources, and the errors shared across
// layers. It has no dependencies on transport or storage.
package domain
