package transport

import "errors"

// Errors
var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrInvalidConfig = errors.New("invalid transport config")

	ErrPayloadTooLarge = errors.New("payload exceeds chunking limits")
)

// Stage is one transform of a transport pipeline.
type Stage interface {
	// Name identifies the stage in logs.
	Name() string

	// Outbound transforms one payload into one or more frames.
	Outbound(payload string) ([]string, error)

	// Inbound reverses Outbound. It returns false when the frame must be
	// dropped or, for the chunker, when the payload is still incomplete.
	Inbound(frame string) (string, bool)
}
