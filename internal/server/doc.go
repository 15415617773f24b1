// Package server wires the HTTP layer: routes, session auth, rate
// limiting, and the handlers that drive the OAuth connect flow.
//
// The handlers own the mapping from internal failure kinds to client
// responses. Everything a failed state validation could reveal is
// collapsed into one generic message; the detailed reason is logged
// server-side only.
package server
