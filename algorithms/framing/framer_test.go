package framing

import (
	"errors"
	"slices"
	"testing"
)

func TestPadModes(t *testing.T) {
	t.Parallel()

	signal := []float32{1, 2, 3, 4}

	tests := []struct {
		name  string
		pad   int
		mode  PadMode
		value float64
		want  []float64
	}{
		{"constant zero", 2, PadConstant, 0, []float64{0, 0, 1, 2, 3, 4, 0, 0}},
		{"constant value", 1, PadConstant, -1, []float64{-1, 1, 2, 3, 4, -1}},
		{"reflect", 2, PadReflect, 0, []float64{3, 2, 1, 2, 3, 4, 3, 2}},
		{"reflect wraps", 5, PadReflect, 0, []float64{2, 3, 4, 3, 2, 1, 2, 3, 4, 3, 2, 1, 2, 3}},
		{"edge", 2, PadEdge, 0, []float64{1, 1, 1, 2, 3, 4, 4, 4}},
		{"no pad", 0, PadReflect, 0, []float64{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Pad(signal, tt.pad, tt.mode, tt.value)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Pad() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPadReflectSingleSample(t *testing.T) {
	t.Parallel()

	got := Pad([]float32{7}, 2, PadReflect, 0)
	want := []float64{7, 7, 7, 7, 7}
	if !slices.Equal(got, want) {
		t.Errorf("Pad() = %v, want %v", got, want)
	}
}

func TestCountFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, frame, hop, want int
	}{
		{10, 4, 2, 4},
		{4, 4, 1, 1},
		{3, 4, 1, 0},
		{10, 0, 1, 0},
		{10, 4, 0, 0},
	}

	for _, tt := range tests {
		if got := CountFrames(tt.n, tt.frame, tt.hop); got != tt.want {
			t.Errorf("CountFrames(%d, %d, %d) = %d, want %d", tt.n, tt.frame, tt.hop, got, tt.want)
		}
	}
}

func TestFramerCenterCoversWholeSignal(t *testing.T) {
	t.Parallel()

	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = float32(i + 1)
	}

	f := NewFramer(16, 4)
	frames, err := f.Frames(samples)
	if err != nil {
		t.Fatalf("Frames() error = %v", err)
	}

	// 1 + (100 + 16 - 16) / 4
	if len(frames) != 26 {
		t.Fatalf("got %d frames, want 26", len(frames))
	}
	if f.NumFrames(len(samples)) != len(frames) {
		t.Errorf("NumFrames() = %d, frames = %d", f.NumFrames(len(samples)), len(frames))
	}

	// Frame i is centered on original sample i*hop
	for i, fr := range frames {
		if len(fr) != 16 {
			t.Fatalf("frame %d has length %d", i, len(fr))
		}
		center := i * 4
		if center < len(samples) && fr[8] != float64(samples[center]) {
			t.Errorf("frame %d center = %v, want %v", i, fr[8], samples[center])
		}
	}

	// First frame starts with zero padding
	if frames[0][0] != 0 || frames[0][7] != 0 {
		t.Errorf("first frame padding not zero: %v", frames[0][:8])
	}
}

func TestFramerValid(t *testing.T) {
	t.Parallel()

	samples := make([]float32, 100)
	f := &Framer{FrameLength: 16, HopLength: 4, Mode: Valid}

	frames, err := f.Frames(samples)
	if err != nil {
		t.Fatalf("Frames() error = %v", err)
	}
	if len(frames) != 22 {
		t.Errorf("got %d frames, want 22", len(frames))
	}

	_, err = f.Frames(make([]float32, 15))
	if !errors.Is(err, ErrTooShort) {
		t.Errorf("short signal error = %v, want ErrTooShort", err)
	}
}

func TestFramerRejectsBadLengths(t *testing.T) {
	t.Parallel()

	_, err := (&Framer{FrameLength: 0, HopLength: 1}).Frames(make([]float32, 8))
	if !errors.Is(err, ErrInvalidFrame) {
		t.Errorf("error = %v, want ErrInvalidFrame", err)
	}
}

func TestFrameTimes(t *testing.T) {
	t.Parallel()

	center := NewFramer(8, 4)
	got := center.FrameTimes(3, 4)
	want := []float64{0, 1, 2}
	if !slices.Equal(got, want) {
		t.Errorf("center FrameTimes() = %v, want %v", got, want)
	}

	valid := &Framer{FrameLength: 8, HopLength: 4, Mode: Valid}
	got = valid.FrameTimes(2, 4)
	want = []float64{1, 2}
	if !slices.Equal(got, want) {
		t.Errorf("valid FrameTimes() = %v, want %v", got, want)
	}
}

func TestParseModes(t *testing.T) {
	t.Parallel()

	if m, err := ParseMode("valid"); err != nil || m != Valid {
		t.Errorf("ParseMode(valid) = %v, %v", m, err)
	}
	if _, err := ParseMode("sideways"); err == nil {
		t.Error("ParseMode should reject unknown names")
	}
	if m, err := ParsePadMode("reflect"); err != nil || m != PadReflect {
		t.Errorf("ParsePadMode(reflect) = %v, %v", m, err)
	}
	if _, err := ParsePadMode("wrap"); err == nil {
		t.Error("ParsePadMode should reject unknown names")
	}
}
