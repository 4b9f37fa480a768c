package tonal

import "errors"

var (
	// ErrInvalidParameters reports an out-of-range or inconsistent tracker
	// parameter (fmin/fmax, frame length, sample rate, hop, ...).
	ErrInvalidParameters = errors.New("invalid pitch tracker parameters")

	// ErrInvalidInputShape reports a waveform that is not single-channel or
	// is too short for the chosen framing policy.
	ErrInvalidInputShape = errors.New("invalid input waveform shape")
)
