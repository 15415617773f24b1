// Package config validates and loads the process environment.
//
// The Guard runs once at boot, before the listener binds, checking every
// declared variable against its rule set and refusing to start on any
// violation. Secrets additionally pass a weak-value heuristic so a
// deployment cannot go live with placeholder key material. After the
// guard passes, Load builds the immutable typed Config handed to
// constructors.
package config
