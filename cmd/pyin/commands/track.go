package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-pyin/algorithms/filters"
	"github.com/RyanBlaney/sonido-pyin/algorithms/framing"
	"github.com/RyanBlaney/sonido-pyin/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pyin/logging"
	"github.com/RyanBlaney/sonido-pyin/transcode"
)

type trackOptions struct {
	params     trackParams
	configFile string
	format     string
	output     string
	mono       bool
	noCenter   bool
	maxSeconds float64
	prefilter  filters.Prefilter
}

func newTrackCmd() *cobra.Command {
	return buildTrackCmd(&trackOptions{params: defaultParams()})
}

func buildTrackCmd(opts *trackOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track <audio-file>",
		Short: "Track the pitch of an audio file",
		Long: `Track the fundamental frequency of a monophonic recording.

Settings come from the defaults, then the --config file (YAML or JSON), then
any flags given explicitly on the command line.

Example parameter file (params.yaml):
  fmin: 80
  fmax: 800
  frame_length: 1024
  resolution: 0.1
  pad_mode: reflect

Examples:
  pyin track voice.wav
  pyin track --config params.yaml --format yaml voice.ogg
  pyin track --no-center --hop-length 160 speech.wav
  pyin track --remove-dc --mono stereo.wav
  pyin track --low-cut 60 --high-cut 1200 --filter-q 0.707 voice.wav`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(cmd, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.params.FMin, "fmin", opts.params.FMin, "lowest pitch to consider (Hz)")
	f.Float64Var(&opts.params.FMax, "fmax", opts.params.FMax, "highest pitch to consider (Hz)")
	f.IntVar(&opts.params.FrameLength, "frame-length", opts.params.FrameLength, "analysis frame length (samples)")
	f.IntVar(&opts.params.HopLength, "hop-length", 0, "samples between frames (default frame-length/4)")
	f.IntVar(&opts.params.WindowLength, "window-length", 0, "difference function window (default frame-length/2)")
	f.Float64Var(&opts.params.Resolution, "resolution", 0, "pitch bin width in semitones (default 0.1)")
	f.StringVar(&opts.params.PadMode, "pad-mode", opts.params.PadMode, "edge padding: constant, reflect or edge")
	f.IntVar(&opts.params.Workers, "workers", 0, "frame workers (default from CPU count)")
	f.BoolVar(&opts.noCenter, "no-center", false, "only analyse frames that fit inside the signal")
	f.StringVarP(&opts.configFile, "config", "c", "", "parameter file (YAML or JSON)")
	f.StringVar(&opts.format, "format", "tsv", "output format: tsv, json or yaml")
	f.StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	f.BoolVar(&opts.mono, "mono", false, "average multi-channel audio into one channel")
	f.Float64Var(&opts.maxSeconds, "max-duration", 0, "only decode the first seconds of audio")
	f.Float64Var(&opts.prefilter.DCCutoff, "remove-dc", 0, "block DC before tracking; --remove-dc=HZ sets the corner")
	f.Lookup("remove-dc").NoOptDefVal = fmt.Sprint(filters.DefaultDCCutoff)
	f.Float64Var(&opts.prefilter.LowCut, "low-cut", 0, "high-pass corner applied before tracking (Hz)")
	f.Float64Var(&opts.prefilter.HighCut, "high-cut", 0, "low-pass corner applied before tracking (Hz)")
	f.Float64Var(&opts.prefilter.Q, "filter-q", filters.DefaultQ, "quality factor of the --low-cut and --high-cut stages")

	return cmd
}

// resolveParams applies the parameter file, then explicitly set flags on top
func resolveParams(cmd *cobra.Command, opts *trackOptions) (trackParams, error) {
	params := opts.params
	if err := checkFormat(opts.format); err != nil {
		return params, err
	}
	if opts.configFile != "" {
		fromFile := defaultParams()
		if err := loadParams(opts.configFile, &fromFile); err != nil {
			return params, err
		}

		flags := cmd.Flags()
		overlay := func(name string, apply func()) {
			if flags.Changed(name) {
				apply()
			}
		}
		overlay("fmin", func() { fromFile.FMin = params.FMin })
		overlay("fmax", func() { fromFile.FMax = params.FMax })
		overlay("frame-length", func() { fromFile.FrameLength = params.FrameLength })
		overlay("hop-length", func() { fromFile.HopLength = params.HopLength })
		overlay("window-length", func() { fromFile.WindowLength = params.WindowLength })
		overlay("resolution", func() { fromFile.Resolution = params.Resolution })
		overlay("pad-mode", func() { fromFile.PadMode = params.PadMode })
		overlay("workers", func() { fromFile.Workers = params.Workers })
		params = fromFile
	}

	if opts.noCenter {
		params.Framing = framing.Valid.String()
	}
	return params, nil
}

func runTrack(cmd *cobra.Command, opts *trackOptions, path string) (err error) {
	logger := logging.WithFields(logging.Fields{
		"component": "pyin_cli",
		"file":      path,
	})

	params, err := resolveParams(cmd, opts)
	if err != nil {
		return err
	}

	decoder := transcode.NewDecoder(&transcode.DecoderConfig{
		MixToMono:   opts.mono,
		MaxDuration: time.Duration(opts.maxSeconds * float64(time.Second)),
	})
	audio, err := decoder.DecodeFile(path)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if audio.Channels > 1 {
		return fmt.Errorf("%s has %d channels, use --mono to downmix: %w",
			path, audio.Channels, tonal.ErrInvalidInputShape)
	}

	audio.PCM, err = opts.prefilter.Apply(audio.PCM, audio.SampleRate)
	if err != nil {
		return fmt.Errorf("%w: %v", tonal.ErrInvalidParameters, err)
	}

	cfg, err := params.config(audio.SampleRate)
	if err != nil {
		return err
	}
	cfg.Logger = logging.GetGlobalLogger()

	tracker, err := tonal.NewTracker(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := tracker.Track(audio.Waveform())
	if err != nil {
		return err
	}

	logger.Info("Pitch track complete", logging.Fields{
		"frames":        res.Len(),
		"voiced_frames": res.VoicedCount(),
		"duration":      audio.Duration,
		"elapsed":       time.Since(start),
	})

	var w io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, createErr := os.Create(opts.output)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", closeErr)
			}
		}()
		w = f
	}

	return writeTrack(w, opts.format, res)
}
