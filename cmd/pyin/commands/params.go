package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/RyanBlaney/sonido-pyin/algorithms/framing"
	"github.com/RyanBlaney/sonido-pyin/algorithms/tonal"
)

// trackParams is the on-disk form of the tracker settings. Zero values leave
// the tracker defaults in place.
type trackParams struct {
	FMin         float64 `json:"fmin" yaml:"fmin"`
	FMax         float64 `json:"fmax" yaml:"fmax"`
	FrameLength  int     `json:"frame_length" yaml:"frame_length"`
	HopLength    int     `json:"hop_length" yaml:"hop_length"`
	WindowLength int     `json:"window_length" yaml:"window_length"`
	Resolution   float64 `json:"resolution" yaml:"resolution"`
	Framing      string  `json:"framing" yaml:"framing"`
	PadMode      string  `json:"pad_mode" yaml:"pad_mode"`
	PadValue     float64 `json:"pad_value" yaml:"pad_value"`

	NThresholds        int      `json:"n_thresholds" yaml:"n_thresholds"`
	BetaAlpha          float64  `json:"beta_alpha" yaml:"beta_alpha"`
	BetaBeta           float64  `json:"beta_beta" yaml:"beta_beta"`
	BoltzmannParameter float64  `json:"boltzmann_parameter" yaml:"boltzmann_parameter"`
	MaxTransitionRate  float64  `json:"max_transition_rate" yaml:"max_transition_rate"`
	SwitchProb         float64  `json:"switch_prob" yaml:"switch_prob"`
	NoTroughProb       float64  `json:"no_trough_prob" yaml:"no_trough_prob"`
	FillUnvoiced       *float64 `json:"fill_unvoiced" yaml:"fill_unvoiced"`
	Workers            int      `json:"workers" yaml:"workers"`
}

func defaultParams() trackParams {
	return trackParams{
		FMin:        65.0,   // C2
		FMax:        2093.0, // C7
		FrameLength: 2048,
		Framing:     framing.Center.String(),
		PadMode:     framing.PadConstant.String(),
	}
}

// loadParams overlays a YAML or JSON file onto p
func loadParams(path string, p *trackParams) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, p); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, p); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	return nil
}

// config builds the tracker configuration for audio at sampleRate
func (p trackParams) config(sampleRate int) (tonal.Config, error) {
	mode, err := framing.ParseMode(p.Framing)
	if err != nil {
		return tonal.Config{}, err
	}
	pad, err := framing.ParsePadMode(p.PadMode)
	if err != nil {
		return tonal.Config{}, err
	}

	return tonal.Config{
		SampleRate:         sampleRate,
		FrameLength:        p.FrameLength,
		FMin:               p.FMin,
		FMax:               p.FMax,
		HopLength:          p.HopLength,
		WindowLength:       p.WindowLength,
		Resolution:         p.Resolution,
		Framing:            mode,
		PadMode:            pad,
		PadValue:           p.PadValue,
		NThresholds:        p.NThresholds,
		BetaAlpha:          p.BetaAlpha,
		BetaBeta:           p.BetaBeta,
		BoltzmannParameter: p.BoltzmannParameter,
		MaxTransitionRate:  p.MaxTransitionRate,
		SwitchProb:         p.SwitchProb,
		NoTroughProb:       p.NoTroughProb,
		FillUnvoiced:       p.FillUnvoiced,
		Workers:            p.Workers,
	}, nil
}
