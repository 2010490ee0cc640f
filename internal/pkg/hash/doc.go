// Package hash provides helpers for hashing and verifying short secrets.
//
// Passcodes are stored hashed, never in plaintext: persist only the hash, then
// verify user input by comparing the plaintext against the stored value. The
// HMAC implementation keeps comparisons constant time.
package hash
