package transcode

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidAudio      = errors.New("invalid audio data")
	ErrEmptyAudio        = errors.New("no audio samples decoded")
)
