// Package crypto protects OAuth token material at rest.
//
// A Cipher encrypts with AES-256-GCM under a key derived from the
// deployment's encryption secret via scrypt. Encoded values carry the IV,
// auth tag, and ciphertext as three colon-delimited base64 fields, so a
// stored value can be inspected and validated without decrypting it.
package crypto
