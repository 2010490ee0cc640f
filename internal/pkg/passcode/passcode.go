package passcode

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	// MinLength is the shortest allowed passcode.
	MinLength = 4
	// MaxLength is the longest allowed passcode.
	MaxLength = 8
	// DefaultLength is used when no length is configured.
	DefaultLength = 6
)

// ErrInvalidLength is returned when the requested length is outside [MinLength, MaxLength].
var ErrInvalidLength = errors.New("passcode: length must be between 4 and 8 digits")

// Generator produces fixed-length numeric passcodes.
type Generator struct {
	length int
}

// NewGenerator returns a Generator for codes of the given length.
func NewGenerator(length int) (*Generator, error) {
	if length < MinLength || length > MaxLength {
		return nil, ErrInvalidLength
	}
	return &Generator{length: length}, nil
}

// Length returns the configured code length.
func (g *Generator) Length() int {
	return g.length
}

// Generate returns a new random digit string.
//
// Each digit is drawn independently from crypto/rand, so leading zeros are
// possible and every code of the configured length is equally likely.
func (g *Generator) Generate() (string, error) {
	digits := make([]byte, g.length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
