package defs

import "time"

// Protocol constants
const (
	// Handshake identity tokens
	TokenEncClient = "otp_enc"
	TokenEncDaemon = "otp_enc_d"
	TokenDecClient = "otp_dec"
	TokenDecDaemon = "otp_dec_d"
	TokenReject    = "no"

	// Exchange request tokens
	TokenSendPlainText  = "sendPlainText"
	TokenSendCipherText = "sendCipherText"
	TokenSendKey        = "sendKey"

	// ReceiveBufferSize is the fixed buffer used for token and size reads;
	// one byte is kept free so the content is always NUL padded.
	ReceiveBufferSize = 1024

	// MaxTextLength bounds the size a daemon accepts in a size announcement
	MaxTextLength = 1 << 20

	// MaxConcurrent is the number of worker slots in a daemon pool
	MaxConcurrent = 5

	// Configuration constants
	DefaultUnitTimeout   = 30 * time.Second
	ConnectionRetryDelay = 1 * time.Second
	PrematureDataProbe   = 5 * time.Millisecond
)
