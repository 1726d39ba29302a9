package errs

import "errors"

// Handshake outcome. Not a transport error: both sides end the exchange cleanly.
var ErrHandshakeRejected = errors.New("handshake rejected")

// Protocol violations, fatal to the side that detects them.
var (
	ErrProtocolViolation = errors.New("protocol violation")
	ErrMalformedSize     = errors.New("malformed size announcement")
	ErrPrematureData     = errors.New("peer sent data before it was requested")
	ErrShortResult       = errors.New("daemon returned fewer bytes than announced")
)

// Input validation errors, detected before any transform or connection.
var (
	ErrKeyTooShort   = errors.New("key is too short for message")
	ErrInvalidSymbol = errors.New("invalid characters detected")
	ErrEmptyInput    = errors.New("no message to read")
)
