// Package main provides the pyin command line pitch tracker.
//
// Usage:
//
//	pyin track [flags] <audio-file>
//
// The track command decodes a WAV, AIFF, MP3 or Ogg Vorbis file, runs the
// probabilistic YIN tracker over it and prints one row per frame
// (time, f0, voiced flag, voiced probability) as TSV, JSON or YAML.
package main

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-pyin/cmd/pyin/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
