package tonal

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-pyin/algorithms/framing"
	"github.com/RyanBlaney/sonido-pyin/internal/testutil"
	"github.com/RyanBlaney/sonido-pyin/logging"
)

const (
	testRate  = 16000
	testFrame = 1024
)

// interior returns the frame indices whose full frame lies inside a centered
// signal of n samples, so no padding takes part in the estimate
func interior(tracker *Tracker, n int) []int {
	cfg := tracker.Config()
	var idx []int
	for i := range tracker.NumFrames(n) {
		center := i * cfg.HopLength
		if center-cfg.FrameLength/2 >= 0 && center+cfg.FrameLength/2 <= n {
			idx = append(idx, i)
		}
	}
	return idx
}

func requireConsistent(t *testing.T, res *Result, frames int) {
	t.Helper()

	if res.Len() != frames || len(res.VoicedFlag) != frames || len(res.VoicedProb) != frames ||
		len(res.Times) != frames || len(res.States) != frames {
		t.Fatalf("lengths f0=%d flag=%d prob=%d times=%d states=%d, want %d",
			len(res.F0), len(res.VoicedFlag), len(res.VoicedProb), len(res.Times), len(res.States), frames)
	}

	for i := range frames {
		if p := res.VoicedProb[i]; p < 0 || p > 1 || math.IsNaN(p) {
			t.Fatalf("frame %d: voiced probability %v outside [0, 1]", i, p)
		}
		if res.VoicedFlag[i] == math.IsNaN(res.F0[i]) {
			t.Fatalf("frame %d: voiced=%v but f0=%v", i, res.VoicedFlag[i], res.F0[i])
		}
	}
}

func TestTrackSine(t *testing.T) {
	t.Parallel()

	for _, freq := range []float64{120, 220, 440, 700} {
		tracker := newTestTracker(t, nil)
		samples := testutil.Sine(freq, testRate, 0.6, testRate)

		res, err := tracker.Track(Waveform{Samples: samples, SampleRate: testRate, Channels: 1})
		if err != nil {
			t.Fatalf("%v Hz: Track() error = %v", freq, err)
		}
		requireConsistent(t, res, tracker.NumFrames(len(samples)))

		// Every frame but the outermost two, padding included
		for i := 1; i < res.Len()-1; i++ {
			if !res.VoicedFlag[i] {
				t.Fatalf("%v Hz: frame %d unvoiced (voiced probability %v)", freq, i, res.VoicedProb[i])
			}
			testutil.RequireRelativeError(t, res.F0[i], freq, 0.01)
		}
		for _, i := range interior(tracker, len(samples)) {
			if res.VoicedProb[i] < 0.9 {
				t.Errorf("%v Hz: frame %d voiced probability %v", freq, i, res.VoicedProb[i])
			}
		}
	}
}

func TestTrackNoisySine(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker(t, nil)
	tone := testutil.Sine(220, testRate, 0.5, testRate)
	noise := testutil.Noise(5, 0.09, testRate)
	for i := range tone {
		tone[i] += noise[i]
	}

	res, err := tracker.Track(Waveform{Samples: tone})
	if err != nil {
		t.Fatal(err)
	}
	requireConsistent(t, res, tracker.NumFrames(len(tone)))

	for i := 1; i < res.Len()-1; i++ {
		if !res.VoicedFlag[i] {
			t.Fatalf("frame %d unvoiced (voiced probability %v)", i, res.VoicedProb[i])
		}
		testutil.RequireRelativeError(t, res.F0[i], 220, 0.01)
	}
}

func TestTrackSilence(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker(t, nil)
	res, err := tracker.Track(Waveform{Samples: testutil.Silence(8000)})
	if err != nil {
		t.Fatal(err)
	}
	requireConsistent(t, res, tracker.NumFrames(8000))

	for i := range res.Len() {
		if res.VoicedFlag[i] || !math.IsNaN(res.F0[i]) {
			t.Fatalf("frame %d decoded voiced (%v Hz)", i, res.F0[i])
		}
		if res.VoicedProb[i] > 1e-9 {
			t.Fatalf("frame %d voiced probability %v, want ~0", i, res.VoicedProb[i])
		}
		if res.States[i] != tracker.NumBins() {
			t.Fatalf("frame %d state %d, want unvoiced", i, res.States[i])
		}
	}
	if res.VoicedCount() != 0 || !math.IsNaN(res.MeanVoicedF0()) {
		t.Errorf("summary: %d voiced, mean %v", res.VoicedCount(), res.MeanVoicedF0())
	}
}

func TestTrackSilenceThenTone(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker(t, nil)
	samples := testutil.Concat(testutil.Silence(8000), testutil.Sine(300, testRate, 0.5, 8000))

	res, err := tracker.Track(Waveform{Samples: samples})
	if err != nil {
		t.Fatal(err)
	}
	requireConsistent(t, res, tracker.NumFrames(len(samples)))

	hop := tracker.Config().HopLength
	for i := range res.Len() {
		center := i * hop
		switch {
		case center+testFrame/2 <= 8000:
			if res.VoicedFlag[i] {
				t.Errorf("frame %d in the silent half decoded voiced", i)
			}
		case center-testFrame/2 >= 8000 && center+testFrame/2 <= len(samples):
			if !res.VoicedFlag[i] {
				t.Errorf("frame %d in the tone decoded unvoiced", i)
			}
		}
	}
}

func TestTrackChirpFollowsPitch(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker(t, nil)
	samples := testutil.Chirp(150, 300, testRate, 0.5, 2*testRate)

	res, err := tracker.Track(Waveform{Samples: samples})
	if err != nil {
		t.Fatal(err)
	}

	for _, i := range interior(tracker, len(samples)) {
		if !res.VoicedFlag[i] {
			t.Fatalf("frame %d unvoiced", i)
		}
		want := 150 + 75*res.Times[i]
		testutil.RequireRelativeError(t, res.F0[i], want, 0.03)
	}
}

func TestTrackFrameCounts(t *testing.T) {
	t.Parallel()

	samples := testutil.Noise(3, 0.3, testRate)

	tests := []struct {
		name   string
		mutate func(*Config)
		frames int
	}{
		{"center constant", nil, 1 + testRate/256},
		{"center reflect", func(c *Config) { c.PadMode = framing.PadReflect }, 1 + testRate/256},
		{"center edge", func(c *Config) { c.PadMode = framing.PadEdge }, 1 + testRate/256},
		{"valid", func(c *Config) { c.Framing = framing.Valid }, 1 + (testRate-testFrame)/256},
		{"custom hop", func(c *Config) { c.HopLength = 160 }, 1 + testRate/160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tracker := newTestTracker(t, tt.mutate)
			if got := tracker.NumFrames(len(samples)); got != tt.frames {
				t.Errorf("NumFrames() = %d, want %d", got, tt.frames)
			}

			res, err := tracker.Track(Waveform{Samples: samples, SampleRate: testRate})
			if err != nil {
				t.Fatal(err)
			}
			requireConsistent(t, res, tt.frames)
		})
	}
}

func TestTrackRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker(t, nil)
	valid := newTestTracker(t, func(c *Config) { c.Framing = framing.Valid })
	tone := testutil.Sine(220, testRate, 0.5, 4000)

	tests := []struct {
		name    string
		tracker *Tracker
		w       Waveform
		want    error
	}{
		{"stereo", tracker, Waveform{Samples: tone, Channels: 2}, ErrInvalidInputShape},
		{"negative channels", tracker, Waveform{Samples: tone, Channels: -1}, ErrInvalidInputShape},
		{"empty", tracker, Waveform{}, ErrInvalidInputShape},
		{"shorter than a frame", valid, Waveform{Samples: tone[:testFrame-1]}, ErrInvalidInputShape},
		{"rate mismatch", tracker, Waveform{Samples: tone, SampleRate: 44100}, ErrInvalidParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := tt.tracker.Track(tt.w)
			if !errors.Is(err, tt.want) {
				t.Errorf("Track() error = %v, want %v", err, tt.want)
			}
			if res != nil {
				t.Error("expected no partial result on error")
			}
		})
	}
}

func TestTrackIdempotent(t *testing.T) {
	t.Parallel()

	samples := testutil.Concat(
		testutil.Sine(180, testRate, 0.4, 6000),
		testutil.Noise(11, 0.2, 4000),
		testutil.Sine(360, testRate, 0.4, 6000),
	)

	serial := newTestTracker(t, func(c *Config) { c.Workers = 1 })
	parallel := newTestTracker(t, func(c *Config) { c.Workers = 8 })

	a, err := serial.Track(Waveform{Samples: samples})
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		b, err := parallel.Track(Waveform{Samples: samples})
		if err != nil {
			t.Fatal(err)
		}
		if !testutil.SameBits(a.F0, b.F0) || !testutil.SameBits(a.VoicedProb, b.VoicedProb) {
			t.Fatal("repeated tracking produced different output")
		}
		for i := range a.States {
			if a.States[i] != b.States[i] || a.VoicedFlag[i] != b.VoicedFlag[i] {
				t.Fatalf("frame %d decoded differently", i)
			}
		}
	}
}

func TestTrackFillUnvoiced(t *testing.T) {
	t.Parallel()

	fill := 0.0
	tracker := newTestTracker(t, func(c *Config) { c.FillUnvoiced = &fill })

	res, err := tracker.Track(Waveform{Samples: testutil.Silence(4000)})
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range res.F0 {
		if f != 0 {
			t.Fatalf("frame %d f0 = %v, want fill value 0", i, f)
		}
	}
}

func TestTrackNonFiniteSamples(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker(t, nil)
	samples := testutil.Sine(220, testRate, 0.5, 8000)
	samples[4000] = float32(math.NaN())

	res, err := tracker.Track(Waveform{Samples: samples})
	if err != nil {
		t.Fatal(err)
	}
	requireConsistent(t, res, tracker.NumFrames(len(samples)))
}

func TestTrackBatch(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker(t, nil)
	waves := []Waveform{
		{Samples: testutil.Sine(150, testRate, 0.5, 6000)},
		{Samples: testutil.Silence(3000)},
		{Samples: testutil.Sine(500, testRate, 0.5, 9000)},
	}

	results, err := tracker.TrackBatch(waves)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(waves) {
		t.Fatalf("got %d results, want %d", len(results), len(waves))
	}
	for i, w := range waves {
		single, err := tracker.Track(w)
		if err != nil {
			t.Fatal(err)
		}
		if !testutil.SameBits(results[i].F0, single.F0) {
			t.Errorf("batch result %d differs from a single call", i)
		}
	}

	waves[1].Channels = 2
	results, err = tracker.TrackBatch(waves)
	if !errors.Is(err, ErrInvalidInputShape) || results != nil {
		t.Errorf("TrackBatch() = %v, %v; want ErrInvalidInputShape and no results", results, err)
	}
}

func TestPYIN(t *testing.T) {
	t.Parallel()

	samples := testutil.Sine(200, testRate, 0.5, testRate/2)
	res, err := PYIN(samples, testRate, testFrame, 100, 800, 0)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireRelativeError(t, res.MeanVoicedF0(), 200, 0.01)

	if _, err := PYIN(samples, testRate, testFrame, 800, 100, 0); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("PYIN() with fmin > fmax error = %v", err)
	}
	if _, err := PYIN(samples, testRate, testFrame, 100, 800, -1); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("PYIN() with negative resolution error = %v", err)
	}
}

func TestTrackerLogsWithComponent(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger := logging.NewDefaultLoggerWithWriter(&out)
	logger.SetLevel(logging.DebugLevel)

	tracker := newTestTracker(t, func(c *Config) { c.Logger = logger })
	if _, err := tracker.Track(Waveform{Samples: testutil.Silence(4000)}); err != nil {
		t.Fatal(err)
	}

	log := out.String()
	for _, want := range []string{"component=pyin_tracker", "pitch_bins=361", "degenerate_frames=0", "voiced_frames=0"} {
		if !strings.Contains(log, want) {
			t.Errorf("log output missing %q:\n%s", want, log)
		}
	}
}
