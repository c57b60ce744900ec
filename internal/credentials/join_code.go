package credentials

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// JoinCodeLength is the number of characters in a section join code
const JoinCodeLength = 6

// joinCodeAlphabet omits characters that are easily confused when read
// aloud or written on a board (0/O, 1/I/L)
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

var ErrJoinCodeExhausted = errors.New("could not find an unused join code")

// GenerateJoinCode returns a random section join code
func GenerateJoinCode() (string, error) {
	code := make([]byte, JoinCodeLength)
	limit := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// UniqueJoinCode generates codes until exists reports one as unused, giving
// up after attempts tries
func UniqueJoinCode(exists func(code string) (bool, error), attempts int) (string, error) {
	for i := 0; i < attempts; i++ {
		code, err := GenerateJoinCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrJoinCodeExhausted
}
