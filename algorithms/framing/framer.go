package framing

import (
	"errors"
	"fmt"
)

var (
	// ErrTooShort is returned when no complete frame fits in the signal
	ErrTooShort = errors.New("signal shorter than one frame")

	// ErrInvalidFrame is returned for non-positive frame or hop lengths
	ErrInvalidFrame = errors.New("frame and hop lengths must be positive")
)

// Mode selects how frames are placed on the signal
type Mode int

const (
	// Center pads FrameLength/2 samples on both sides so that frame i is
	// centered on sample i*HopLength of the original signal
	Center Mode = iota

	// Valid takes only frames that fit entirely inside the original signal
	Valid
)

func (m Mode) String() string {
	switch m {
	case Center:
		return "center"
	case Valid:
		return "valid"
	default:
		return "unknown"
	}
}

// ParseMode converts "center"/"valid" into a Mode
func ParseMode(name string) (Mode, error) {
	switch name {
	case "center", "":
		return Center, nil
	case "valid", "none":
		return Valid, nil
	default:
		return Center, fmt.Errorf("unknown framing mode %q", name)
	}
}

// Framer slices a waveform into overlapping analysis frames
type Framer struct {
	FrameLength int     `json:"frame_length"`
	HopLength   int     `json:"hop_length"`
	Mode        Mode    `json:"mode"`
	PadMode     PadMode `json:"pad_mode"`
	PadValue    float64 `json:"pad_value"`
}

// NewFramer creates a centered, zero-padded framer
func NewFramer(frameLength, hopLength int) *Framer {
	return &Framer{
		FrameLength: frameLength,
		HopLength:   hopLength,
		Mode:        Center,
		PadMode:     PadConstant,
	}
}

// CountFrames returns how many frames of frameLength fit in n samples at the given hop
func CountFrames(n, frameLength, hop int) int {
	if frameLength <= 0 || hop <= 0 || n < frameLength {
		return 0
	}
	return 1 + (n-frameLength)/hop
}

// NumFrames returns the frame count the framer produces for n input samples
func (f *Framer) NumFrames(n int) int {
	if f.Mode == Center {
		n += 2 * (f.FrameLength / 2)
	}
	return CountFrames(n, f.FrameLength, f.HopLength)
}

// Frames pads (in Center mode) and slices samples into frames. The returned
// frames are views into one shared buffer and must not be modified.
func (f *Framer) Frames(samples []float32) ([][]float64, error) {
	if f.FrameLength <= 0 || f.HopLength <= 0 {
		return nil, fmt.Errorf("%w: frame=%d hop=%d", ErrInvalidFrame, f.FrameLength, f.HopLength)
	}

	var signal []float64
	switch f.Mode {
	case Center:
		signal = Pad(samples, f.FrameLength/2, f.PadMode, f.PadValue)
	case Valid:
		signal = toFloat64(samples)
	default:
		return nil, fmt.Errorf("unsupported framing mode: %d", f.Mode)
	}

	return Frame(signal, f.FrameLength, f.HopLength)
}

// Frame slices signal into frames of frameLength every hop samples
func Frame(signal []float64, frameLength, hop int) ([][]float64, error) {
	if frameLength <= 0 || hop <= 0 {
		return nil, fmt.Errorf("%w: frame=%d hop=%d", ErrInvalidFrame, frameLength, hop)
	}

	numFrames := CountFrames(len(signal), frameLength, hop)
	if numFrames == 0 {
		return nil, fmt.Errorf("%w: %d samples, frame length %d", ErrTooShort, len(signal), frameLength)
	}

	frames := make([][]float64, numFrames)
	for i := range numFrames {
		start := i * hop
		frames[i] = signal[start : start+frameLength : start+frameLength]
	}

	return frames, nil
}

// FrameTimes returns the time in seconds of the center of each of n frames
// relative to the start of the original (unpadded) signal
func (f *Framer) FrameTimes(n int, sampleRate int) []float64 {
	times := make([]float64, n)
	if sampleRate <= 0 {
		return times
	}

	offset := 0
	if f.Mode == Valid {
		offset = f.FrameLength / 2
	}

	sr := float64(sampleRate)
	for i := range times {
		times[i] = float64(i*f.HopLength+offset) / sr
	}

	return times
}

func toFloat64(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)
	}
	return out
}
