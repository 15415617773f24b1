// Package database implements the Postgres-backed repositories.
//
// The connection repository is the credential store: it encrypts token
// material on the way in and decrypts on the way out, so plaintext tokens
// never cross the storage boundary.
package database
