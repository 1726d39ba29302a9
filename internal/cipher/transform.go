// Package cipher implements the 27-symbol modular substitution used by the
// otp daemons. It provides no real confidentiality.
package cipher

import (
	"fmt"

	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/static/errs"
)

// AlphabetSize is the number of symbols in the cipher alphabet
const AlphabetSize = 27

const (
	plainBlank  = ' '
	cipherBlank = '@'
)

// Encrypt transforms plaintext into ciphertext with key
func Encrypt(text, key string) (string, error) {
	return Transform(domain.CipherJob{Text: text, Key: key, Direction: domain.DirectionEncrypt})
}

// Decrypt transforms ciphertext back into plaintext with key
func Decrypt(text, key string) (string, error) {
	return Transform(domain.CipherJob{Text: text, Key: key, Direction: domain.DirectionDecrypt})
}

// Transform runs one cipher job symbol by symbol.
//
// Processing stops at the first line terminator or NUL; the result covers
// only the symbols before it. Text symbols outside the input alphabet are
// copied through unchanged.
func Transform(job domain.CipherJob) (string, error) {
	text := job.Text[:UsableLength(job.Text)]
	job.Text = text
	if err := job.Validate(); err != nil {
		return "", err
	}

	out := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		t, ok := textIndex(text[i], job.Direction)
		if !ok {
			out[i] = text[i]
			continue
		}
		k, ok := KeyIndex(job.Key[i])
		if !ok {
			return "", fmt.Errorf("%w: key symbol %q at %d", errs.ErrInvalidSymbol, job.Key[i], i)
		}

		if job.Direction == domain.DirectionEncrypt {
			out[i] = symbol((t+k)%AlphabetSize, cipherBlank)
		} else {
			out[i] = symbol(((t-k)%AlphabetSize+AlphabetSize)%AlphabetSize, plainBlank)
		}
	}
	return string(out), nil
}

// UsableLength returns the number of leading symbols before the first
// line terminator or NUL.
func UsableLength(text string) int {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' || text[i] == 0 {
			return i
		}
	}
	return len(text)
}

// KeyIndex maps a key symbol to its alphabet index. '@' and space are 0.
func KeyIndex(c byte) (int, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 1, true
	case c == cipherBlank, c == plainBlank:
		return 0, true
	}
	return 0, false
}

// InAlphabet reports whether c is transformed when it appears in a text
// travelling in direction dir.
func InAlphabet(c byte, dir domain.Direction) bool {
	_, ok := textIndex(c, dir)
	return ok
}

func textIndex(c byte, dir domain.Direction) (int, bool) {
	if c >= 'A' && c <= 'Z' {
		return int(c-'A') + 1, true
	}
	blank := byte(plainBlank)
	if dir == domain.DirectionDecrypt {
		blank = cipherBlank
	}
	if c == blank {
		return 0, true
	}
	return 0, false
}

func symbol(idx int, blank byte) byte {
	if idx == 0 {
		return blank
	}
	return byte('A' + idx - 1)
}
