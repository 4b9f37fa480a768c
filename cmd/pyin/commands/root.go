package commands

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-pyin/logging"
)

var (
	// Global flags
	verbose  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "pyin",
	Short: "Probabilistic YIN pitch tracker",
	Long: `pyin - estimate the fundamental frequency contour of monophonic audio.

Each analysis frame gets a pitch in Hz (or NaN when unvoiced), a voiced flag
and the probability mass the tracker assigned to voiced pitches.

Examples:
  pyin track voice.wav
  pyin track --fmin 65 --fmax 1000 --format json voice.wav
  pyin track --config params.yaml --mono -o track.tsv stereo.mp3`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		if verbose {
			level = logging.DebugLevel
		}

		logger := logging.NewDefaultLogger()
		logger.SetLevel(level)
		logging.SetGlobalLogger(logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newTrackCmd())
}
