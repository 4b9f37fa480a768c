package tonal

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-pyin/algorithms/common"
	"github.com/RyanBlaney/sonido-pyin/algorithms/framing"
	"github.com/RyanBlaney/sonido-pyin/logging"
)

// Default tracker constants
const (
	DefaultResolution         = 0.1   // semitones per pitch bin
	DefaultThresholds         = 100   // YIN thresholds swept per frame
	DefaultBetaAlpha          = 2.0   // threshold prior Beta(2, 18), mean 0.1
	DefaultBetaBeta           = 18.0  //
	DefaultBoltzmannParameter = 2.0   // preference for earlier troughs
	DefaultMaxTransitionRate  = 35.92 // semitones per second
	DefaultSwitchProb         = 0.01  // voiced <-> unvoiced per frame
	DefaultNoTroughProb       = 0.01  // mass for the global minimum when no trough clears a threshold
	DefaultTroughCeiling      = 1.0   // troughs at or above this are not candidates
)

// Config holds the parameters of a pitch tracker. Zero values of optional
// fields are replaced by their defaults once, in NewTracker.
type Config struct {
	SampleRate  int     `json:"sample_rate"`
	FrameLength int     `json:"frame_length"`
	FMin        float64 `json:"fmin"`
	FMax        float64 `json:"fmax"`

	// HopLength defaults to FrameLength/4
	HopLength int `json:"hop_length,omitempty"`
	// WindowLength is the integration window of the difference function and
	// defaults to FrameLength/2. It must leave room for the longest lag.
	WindowLength int `json:"window_length,omitempty"`
	// Resolution is the pitch-bin width in semitones (default 0.1)
	Resolution float64 `json:"resolution,omitempty"`

	Framing  framing.Mode    `json:"framing"`
	PadMode  framing.PadMode `json:"pad_mode"`
	PadValue float64         `json:"pad_value"`

	NThresholds        int     `json:"n_thresholds,omitempty"`
	BetaAlpha          float64 `json:"beta_alpha,omitempty"`
	BetaBeta           float64 `json:"beta_beta,omitempty"`
	BoltzmannParameter float64 `json:"boltzmann_parameter,omitempty"`
	MaxTransitionRate  float64 `json:"max_transition_rate,omitempty"`
	SwitchProb         float64 `json:"switch_prob,omitempty"`
	NoTroughProb       float64 `json:"no_trough_prob,omitempty"`
	TroughCeiling      float64 `json:"trough_ceiling,omitempty"`

	// FillUnvoiced replaces f0 on unvoiced frames; nil means NaN
	FillUnvoiced *float64 `json:"fill_unvoiced,omitempty"`

	// Workers bounds the per-frame fan-out; 0 picks a count from the CPUs
	Workers int `json:"workers,omitempty"`

	Logger logging.Logger `json:"-"`
}

// DefaultConfig returns a centered, zero-padded configuration with every
// optional field filled in
func DefaultConfig(sampleRate, frameLength int, fmin, fmax float64) Config {
	return Config{
		SampleRate:         sampleRate,
		FrameLength:        frameLength,
		FMin:               fmin,
		FMax:               fmax,
		HopLength:          max(frameLength/4, 1),
		WindowLength:       max(frameLength/2, 1),
		Resolution:         DefaultResolution,
		Framing:            framing.Center,
		PadMode:            framing.PadConstant,
		NThresholds:        DefaultThresholds,
		BetaAlpha:          DefaultBetaAlpha,
		BetaBeta:           DefaultBetaBeta,
		BoltzmannParameter: DefaultBoltzmannParameter,
		MaxTransitionRate:  DefaultMaxTransitionRate,
		SwitchProb:         DefaultSwitchProb,
		NoTroughProb:       DefaultNoTroughProb,
		TroughCeiling:      DefaultTroughCeiling,
	}
}

// layout holds the quantities derived from a resolved Config
type layout struct {
	minPeriod       int     // shortest lag searched (samples)
	maxPeriod       int     // longest lag searched (samples)
	binsPerSemitone int     // pitch bins per semitone
	numBins         int     // voiced pitch bins; state numBins is unvoiced
	transitionWidth int     // odd width of the local pitch transition window
	fill            float64 // f0 written for unvoiced frames
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameters, fmt.Sprintf(format, args...))
}

func positiveOr(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// resolve fills defaults, validates and derives the pitch-bin/lag layout
func (c Config) resolve() (Config, layout, error) {
	var lay layout

	if c.SampleRate <= 0 {
		return c, lay, invalid("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.FrameLength <= 0 {
		return c, lay, invalid("frame length must be positive, got %d", c.FrameLength)
	}
	if !(c.FMin > 0) || math.IsInf(c.FMin, 0) {
		return c, lay, invalid("fmin must be positive and finite, got %g", c.FMin)
	}
	if !(c.FMax > c.FMin) {
		return c, lay, invalid("fmin (%g) must be below fmax (%g)", c.FMin, c.FMax)
	}
	nyquist := float64(c.SampleRate) / 2
	if !(c.FMax < nyquist) {
		return c, lay, invalid("fmax (%g) must be below the Nyquist frequency (%g)", c.FMax, nyquist)
	}

	if c.HopLength < 0 || c.WindowLength < 0 || c.NThresholds < 0 || c.Workers < 0 {
		return c, lay, invalid("hop, window, threshold count and workers must not be negative")
	}
	if c.HopLength == 0 {
		c.HopLength = max(c.FrameLength/4, 1)
	}
	if c.WindowLength == 0 {
		c.WindowLength = max(c.FrameLength/2, 1)
	}
	if c.WindowLength >= c.FrameLength {
		return c, lay, invalid("window length (%d) must be shorter than frame length (%d)", c.WindowLength, c.FrameLength)
	}
	if c.NThresholds == 0 {
		c.NThresholds = DefaultThresholds
	}

	c.Resolution = positiveOr(c.Resolution, DefaultResolution)
	c.BetaAlpha = positiveOr(c.BetaAlpha, DefaultBetaAlpha)
	c.BetaBeta = positiveOr(c.BetaBeta, DefaultBetaBeta)
	c.BoltzmannParameter = positiveOr(c.BoltzmannParameter, DefaultBoltzmannParameter)
	c.MaxTransitionRate = positiveOr(c.MaxTransitionRate, DefaultMaxTransitionRate)
	c.SwitchProb = positiveOr(c.SwitchProb, DefaultSwitchProb)
	c.NoTroughProb = positiveOr(c.NoTroughProb, DefaultNoTroughProb)
	c.TroughCeiling = positiveOr(c.TroughCeiling, DefaultTroughCeiling)

	switch {
	case !(c.Resolution > 0) || math.IsInf(c.Resolution, 0):
		return c, lay, invalid("resolution must be positive, got %g", c.Resolution)
	case !(c.BetaAlpha > 0) || !(c.BetaBeta > 0):
		return c, lay, invalid("beta parameters must be positive, got (%g, %g)", c.BetaAlpha, c.BetaBeta)
	case !(c.BoltzmannParameter > 0):
		return c, lay, invalid("boltzmann parameter must be positive, got %g", c.BoltzmannParameter)
	case !(c.MaxTransitionRate > 0):
		return c, lay, invalid("max transition rate must be positive, got %g", c.MaxTransitionRate)
	case !(c.SwitchProb > 0 && c.SwitchProb < 1):
		return c, lay, invalid("switch probability must be in (0, 1), got %g", c.SwitchProb)
	case !(c.NoTroughProb >= 0 && c.NoTroughProb <= 1):
		return c, lay, invalid("no-trough probability must be in [0, 1], got %g", c.NoTroughProb)
	case !(c.TroughCeiling > 0):
		return c, lay, invalid("trough ceiling must be positive, got %g", c.TroughCeiling)
	}

	switch c.Framing {
	case framing.Center, framing.Valid:
	default:
		return c, lay, invalid("unknown framing mode %d", c.Framing)
	}
	switch c.PadMode {
	case framing.PadConstant, framing.PadReflect, framing.PadEdge:
	default:
		return c, lay, invalid("unknown pad mode %d", c.PadMode)
	}

	sr := float64(c.SampleRate)
	lay.minPeriod = max(int(math.Floor(sr/c.FMax)), 1)
	lay.maxPeriod = min(int(math.Ceil(sr/c.FMin)), c.FrameLength-c.WindowLength-1)
	if lay.maxPeriod <= lay.minPeriod {
		return c, lay, invalid("frame length %d with window %d leaves no lag range for fmin %g / fmax %g (lags %d..%d)",
			c.FrameLength, c.WindowLength, c.FMin, c.FMax, lay.minPeriod, lay.maxPeriod)
	}

	lay.binsPerSemitone = int(math.Ceil(1 / c.Resolution))
	lay.numBins = int(math.Floor(float64(lay.binsPerSemitone)*common.SemitonesBetween(c.FMin, c.FMax))) + 1

	maxSemitonesPerFrame := int(math.Round(c.MaxTransitionRate * 12 * float64(c.HopLength) / sr))
	lay.transitionWidth = maxSemitonesPerFrame*lay.binsPerSemitone + 1
	if lay.transitionWidth%2 == 0 {
		lay.transitionWidth++
	}

	lay.fill = math.NaN()
	if c.FillUnvoiced != nil {
		lay.fill = *c.FillUnvoiced
	}

	if c.Logger == nil {
		c.Logger = logging.GetGlobalLogger()
	}

	return c, lay, nil
}
