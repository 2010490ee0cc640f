// Package passcode generates short-lived numeric verification codes.
//
// Codes are independent random digit strings, not derived from a shared
// secret, so knowing one code reveals nothing about the next.
package passcode
