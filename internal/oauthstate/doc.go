// Package oauthstate generates and validates the signed state parameter
// carried through the OAuth authorization redirect.
//
// A state token binds an outbound authorization request to the initiating
// user and target source, and expires ten minutes after issue. Tokens are
// stateless: there is no server-side single-use ledger, so a leaked token
// can be replayed within its window. That tradeoff is accepted in exchange
// for not needing shared storage on the callback path.
package oauthstate
