package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gitlab.com/otp-2025.net/internal/cipher"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/static/errs"
)

// ReadFirstLine returns the first line of the file at path without its
// line terminator.
func ReadFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not open file %s: %w", path, err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return "", fmt.Errorf("%s: %w", path, errs.ErrEmptyInput)
	}
	return line, nil
}

// ValidateInput checks text and key before any connection is made. Text
// must use the input alphabet of direction; keys use 'A'..'Z' and '@'.
func ValidateInput(text, key string, direction domain.Direction) error {
	if len(key) < len(text) {
		return errs.ErrKeyTooShort
	}
	for i := 0; i < len(text); i++ {
		if !cipher.InAlphabet(text[i], direction) {
			return fmt.Errorf("%w in %s", errs.ErrInvalidSymbol, textName(direction))
		}
	}
	for i := 0; i < len(key); i++ {
		if !cipher.InAlphabet(key[i], domain.DirectionDecrypt) {
			return fmt.Errorf("%w in key", errs.ErrInvalidSymbol)
		}
	}
	return nil
}

func textName(direction domain.Direction) string {
	if direction == domain.DirectionDecrypt {
		return "cipherText"
	}
	return "plainText"
}
