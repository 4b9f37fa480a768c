package tonal

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-pyin/algorithms/common"
	"github.com/RyanBlaney/sonido-pyin/algorithms/framing"
	"github.com/RyanBlaney/sonido-pyin/algorithms/stats"
	"github.com/RyanBlaney/sonido-pyin/logging"
)

// Waveform is a buffered mono signal
type Waveform struct {
	Samples    []float32 `json:"samples"`
	SampleRate int       `json:"sample_rate"` // 0 means the tracker's rate
	Channels   int       `json:"channels"`    // 0 or 1; interleaved multi-channel input is rejected
}

// Tracker estimates fundamental frequency contours with probabilistic YIN
// and HMM smoothing.
//
// Each frame's normalized difference function is searched for troughs, every
// trough is weighted by how many thresholds of a Beta prior it clears, and the
// resulting per-frame distributions over pitch bins plus an unvoiced state
// are decoded jointly with Viterbi.
//
// References:
// - Mauch, M., Dixon, S. (2014). "pYIN: A fundamental frequency estimator using probabilistic threshold distributions"
// - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency estimator for speech and music"
//
// A Tracker is immutable once built and safe for concurrent use.
type Tracker struct {
	config Config
	layout layout

	framer     *framing.Framer
	difference *DifferenceFunction
	prior      *stats.ThresholdPrior
	transition *transitionModel

	logger logging.Logger
}

// NewTracker validates cfg, derives its defaults and builds the tracker
func NewTracker(cfg Config) (*Tracker, error) {
	cfg, lay, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	prior, err := stats.NewThresholdPrior(cfg.NThresholds, cfg.BetaAlpha, cfg.BetaBeta)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	t := &Tracker{
		config: cfg,
		layout: lay,
		framer: &framing.Framer{
			FrameLength: cfg.FrameLength,
			HopLength:   cfg.HopLength,
			Mode:        cfg.Framing,
			PadMode:     cfg.PadMode,
			PadValue:    cfg.PadValue,
		},
		difference: NewDifferenceFunction(cfg.WindowLength, lay.maxPeriod),
		prior:      prior,
		transition: newTransitionModel(lay.numBins, lay.transitionWidth, cfg.SwitchProb),
		logger:     cfg.Logger.WithFields(logging.Fields{"component": "pyin_tracker"}),
	}

	t.logger.Debug("Pitch tracker ready", logging.Fields{
		"sample_rate":      cfg.SampleRate,
		"frame_length":     cfg.FrameLength,
		"hop_length":       cfg.HopLength,
		"window_length":    cfg.WindowLength,
		"min_period":       lay.minPeriod,
		"max_period":       lay.maxPeriod,
		"pitch_bins":       lay.numBins,
		"transition_width": lay.transitionWidth,
	})

	return t, nil
}

// Config returns the resolved configuration
func (t *Tracker) Config() Config {
	return t.config
}

// NumFrames returns how many frames a waveform of n samples produces
func (t *Tracker) NumFrames(n int) int {
	return t.framer.NumFrames(n)
}

func (t *Tracker) validate(w Waveform) error {
	if w.Channels < 0 || w.Channels > 1 {
		return fmt.Errorf("%w: expected one channel, got %d", ErrInvalidInputShape, w.Channels)
	}
	if w.SampleRate != 0 && w.SampleRate != t.config.SampleRate {
		return fmt.Errorf("%w: waveform sample rate %d does not match tracker rate %d",
			ErrInvalidParameters, w.SampleRate, t.config.SampleRate)
	}
	if len(w.Samples) == 0 {
		return fmt.Errorf("%w: empty waveform", ErrInvalidInputShape)
	}
	return nil
}

// Track estimates the pitch contour of w. Either the complete track is
// returned or an error wrapping ErrInvalidParameters / ErrInvalidInputShape.
func (t *Tracker) Track(w Waveform) (*Result, error) {
	if err := t.validate(w); err != nil {
		return nil, err
	}

	frames, err := t.framer.Frames(w.Samples)
	if err != nil {
		if errors.Is(err, framing.ErrTooShort) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInputShape, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	numFrames := len(frames)
	observations := make([][]float64, numFrames)
	degenerate := make([]bool, numFrames)

	common.ParallelFor(numFrames, t.config.Workers, func(i int) {
		candidates, bad := t.frameCandidates(frames[i])
		observations[i] = t.Observation(candidates)
		degenerate[i] = bad
	})

	path := t.transition.viterbi(observations)
	res := t.assemble(path, observations, t.framer.FrameTimes(numFrames, t.config.SampleRate))

	degenerateCount := 0
	for _, bad := range degenerate {
		if bad {
			degenerateCount++
		}
	}

	t.logger.Debug("Pitch track decoded", logging.Fields{
		"samples":           len(w.Samples),
		"frames":            numFrames,
		"voiced_frames":     res.VoicedCount(),
		"degenerate_frames": degenerateCount,
	})

	return res, nil
}

// TrackBatch tracks independent waveforms concurrently. Results are in input
// order; the first failing waveform (by index) aborts the whole batch.
func (t *Tracker) TrackBatch(waveforms []Waveform) ([]*Result, error) {
	results := make([]*Result, len(waveforms))
	errs := make([]error, len(waveforms))

	common.ParallelFor(len(waveforms), t.config.Workers, func(i int) {
		results[i], errs[i] = t.Track(waveforms[i])
	})

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("waveform %d: %w", i, err)
		}
	}

	return results, nil
}

// PYIN tracks the pitch of a mono signal with default settings. hop and
// window lengths derive from frameLength; resolution 0 selects the default.
func PYIN(samples []float32, sampleRate, frameLength int, fmin, fmax, resolution float64) (*Result, error) {
	cfg := DefaultConfig(sampleRate, frameLength, fmin, fmax)
	if resolution != 0 {
		cfg.Resolution = resolution
	}

	tracker, err := NewTracker(cfg)
	if err != nil {
		return nil, err
	}

	return tracker.Track(Waveform{Samples: samples, SampleRate: sampleRate, Channels: 1})
}
