package signal

import (
	"errors"
	"fmt"
)

// ErrMalformedSignal marks a signal that parsed but is missing fields its
// category/action combination requires. Receivers treat these as no-ops.
var ErrMalformedSignal = errors.New("signal: malformed signal")

// DecodeError reports a payload that could not be decoded or decrypted.
// When decryption of a chat payload fails, Decode still returns the parsed
// envelope alongside the error so the receiver can attribute the failure
// to a sender and show a placeholder instead of the text.
type DecodeError struct {
	Stage string // "parse" or "decrypt"
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("signal: %s failed: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
