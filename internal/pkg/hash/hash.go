package hash

// Hash abstracts keyed hashing of short secrets.
type Hash interface {
	// Hash takes a plaintext string and returns its hashed representation.
	Hash(str string) ([]byte, error)
	// Verify reports whether the plaintext string matches the given hash.
	Verify(hashed, str string) bool
}
