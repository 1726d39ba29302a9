package domain

import (
	"fmt"

	"gitlab.com/otp-2025.net/internal/static/errs"
)

// Direction selects which half of the cipher a daemon or client serves
type Direction string

const (
	DirectionEncrypt Direction = "encrypt"
	DirectionDecrypt Direction = "decrypt"
)

// Valid reports whether d is one of the two known directions
func (d Direction) Valid() bool {
	return d == DirectionEncrypt || d == DirectionDecrypt
}

// ProgramName returns the client program name used for this direction
func (d Direction) ProgramName() string {
	if d == DirectionDecrypt {
		return "otp_dec"
	}
	return "otp_enc"
}

// DaemonName returns the daemon program name used for this direction
func (d Direction) DaemonName() string {
	return d.ProgramName() + "_d"
}

// CipherJob is one request handed to the cipher transform
type CipherJob struct {
	Text      string
	Key       string
	Direction Direction
}

// Validate re-checks the invariants the transform relies on.
func (j CipherJob) Validate() error {
	if !j.Direction.Valid() {
		return fmt.Errorf("unknown direction %q", j.Direction)
	}
	if len(j.Key) < len(j.Text) {
		return fmt.Errorf("%w: key %d, text %d", errs.ErrKeyTooShort, len(j.Key), len(j.Text))
	}
	return nil
}
