package internal

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/google/uuid"
)

const (
	passwordLowercase = "abcdefghijklmnopqrstuvwxyz"
	passwordUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordDigits    = "0123456789"
	passwordSymbols   = "!$%&'()*+,/;<=>?^{}~"
)

// NewPrincipalID returns a fresh principal identifier.
func NewPrincipalID() string {
	return uuid.NewString()
}

// GeneratePassword returns a random password of the given length containing
// at least one character from each required class, so it always satisfies the
// account password policy.
func GeneratePassword(length int) (string, error) {
	if length < 8 {
		return "", errors.New("generated password length must be >= 8")
	}

	classes := []string{
		passwordLowercase,
		passwordUppercase,
		passwordDigits,
		passwordSymbols,
	}
	all := passwordLowercase + passwordUppercase + passwordDigits + passwordSymbols

	out := make([]byte, length)
	for i, class := range classes {
		c, err := randomByte(class)
		if err != nil {
			return "", err
		}
		out[i] = c
	}
	for i := len(classes); i < length; i++ {
		c, err := randomByte(all)
		if err != nil {
			return "", err
		}
		out[i] = c
	}

	// Fisher-Yates so the class-guaranteed characters are not positional.
	for i := len(out) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := int(n.Int64())
		out[i], out[j] = out[j], out[i]
	}

	return string(out), nil
}

func randomByte(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}
