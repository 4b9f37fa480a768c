package framing

import "fmt"

// PadMode selects how the signal is extended past its ends
type PadMode int

const (
	// PadConstant fills with a fixed value (zero by default)
	PadConstant PadMode = iota

	// PadReflect mirrors the signal around its first and last samples
	// without repeating them: [1 2 3] -> [3 2 | 1 2 3 | 2 1]
	PadReflect

	// PadEdge repeats the first and last samples
	PadEdge
)

func (m PadMode) String() string {
	switch m {
	case PadConstant:
		return "constant"
	case PadReflect:
		return "reflect"
	case PadEdge:
		return "edge"
	default:
		return "unknown"
	}
}

// ParsePadMode converts a pad mode name into a PadMode
func ParsePadMode(name string) (PadMode, error) {
	switch name {
	case "constant", "zero", "":
		return PadConstant, nil
	case "reflect":
		return PadReflect, nil
	case "edge":
		return PadEdge, nil
	default:
		return PadConstant, fmt.Errorf("unknown pad mode %q", name)
	}
}

// Pad returns a float64 copy of signal extended by pad samples on both sides
func Pad(signal []float32, pad int, mode PadMode, value float64) []float64 {
	if pad < 0 {
		pad = 0
	}

	n := len(signal)
	out := make([]float64, n+2*pad)
	for i, s := range signal {
		out[pad+i] = float64(s)
	}

	if pad == 0 {
		return out
	}

	// Nothing to mirror or repeat in an empty signal
	if n == 0 && mode != PadConstant {
		mode = PadConstant
		value = 0
	}

	for i := range pad {
		left := i - pad // source index for out[i]
		right := n + i  // source index for out[pad+n+i]
		switch mode {
		case PadConstant:
			out[i] = value
			out[pad+n+i] = value
		case PadReflect:
			out[i] = float64(signal[reflectIndex(left, n)])
			out[pad+n+i] = float64(signal[reflectIndex(right, n)])
		case PadEdge:
			out[i] = float64(signal[0])
			out[pad+n+i] = float64(signal[n-1])
		}
	}

	return out
}

// reflectIndex folds an out-of-range index back into [0, n) by mirroring
// around the end samples, repeating as often as needed
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	m := i % period
	if m < 0 {
		m += period
	}
	if m >= n {
		m = period - m
	}
	return m
}
