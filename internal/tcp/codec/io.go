package codec

import (
	"io"

	"gitlab.com/otp-2025.net/internal/tcp/defs"
)

// WriteFull writes p to w, retrying on short writes until every byte has
// been accepted. It never retries a failed call.
func WriteFull(w io.Writer, p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := w.Write(p[written:])
		written += n
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}

// ReadToken performs a single blocking read into the fixed receive buffer
// and returns what arrived.
func ReadToken(r io.Reader) ([]byte, error) {
	buf := make([]byte, defs.ReceiveBufferSize)
	n, err := r.Read(buf[:defs.ReceiveBufferSize-1])
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return nil, err
}
