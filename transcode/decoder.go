package transcode

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RyanBlaney/sonido-pyin/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pyin/logging"
)

// AudioData represents decoded audio data
type AudioData struct {
	PCM        []float32      `json:"-"` // Interleaved samples in [-1, 1]
	SampleRate int            `json:"sample_rate"`
	Channels   int            `json:"channels"`
	Duration   time.Duration  `json:"duration"`
	Metadata   *AudioMetadata `json:"metadata,omitempty"`
}

// AudioMetadata holds properties of the decoded stream
type AudioMetadata struct {
	Format   string `json:"format"`
	Codec    string `json:"codec"`
	BitDepth int    `json:"bit_depth,omitempty"`
	Source   string `json:"source,omitempty"`

	// Channels of the source before any downmix
	SourceChannels int `json:"source_channels"`
}

// Frames returns the number of sample frames (samples per channel)
func (a *AudioData) Frames() int {
	if a.Channels <= 0 {
		return 0
	}
	return len(a.PCM) / a.Channels
}

// Waveform hands the samples to the pitch tracker. Multi-channel audio stays
// multi-channel; decode with MixToMono to get a trackable signal.
func (a *AudioData) Waveform() tonal.Waveform {
	return tonal.Waveform{
		Samples:    a.PCM,
		SampleRate: a.SampleRate,
		Channels:   a.Channels,
	}
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	MixToMono   bool          `json:"mix_to_mono"`  // Average channels into one
	MaxDuration time.Duration `json:"max_duration"` // 0 means no limit
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		MixToMono:   false,
		MaxDuration: 0, // No limit
	}
}

// Decoder turns encoded audio into float PCM
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// DecodeFile decodes an audio file, picking the codec from the extension and
// falling back to the file header
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	logger.Debug("Starting audio file decode")

	f, err := os.Open(filename)
	if err != nil {
		logger.Error(err, "Failed to open audio file")
		return nil, err
	}
	defer f.Close()

	audio, err := d.Decode(f, FormatFromPath(filename))
	if err != nil {
		logger.Error(err, "Failed to decode audio file")
		return nil, err
	}

	audio.Metadata.Source = filename
	return audio, nil
}

// DecodeBytes decodes an in-memory file
func (d *Decoder) DecodeBytes(data []byte, format Format) (*AudioData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidAudio)
	}
	return d.Decode(bytes.NewReader(data), format)
}

// Decode reads a whole stream. FormatUnknown sniffs the header.
func (d *Decoder) Decode(r io.ReadSeeker, format Format) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "Decode",
	})

	if format == FormatUnknown {
		header := make([]byte, 12)
		n, err := io.ReadFull(r, header)
		if err != nil && err != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: reading header: %v", ErrInvalidAudio, err)
		}
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		format = sniffFormat(header[:n])
	}

	var (
		audio *AudioData
		err   error
	)
	switch format {
	case FormatWAV:
		audio, err = decodeWAV(r)
	case FormatAIFF:
		audio, err = decodeAIFF(r)
	case FormatMP3:
		audio, err = decodeMP3(r)
	case FormatOgg:
		audio, err = decodeOgg(r)
	default:
		return nil, fmt.Errorf("%w: could not detect format", ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}

	if audio.Frames() == 0 {
		return nil, ErrEmptyAudio
	}

	audio.Metadata.SourceChannels = audio.Channels
	d.truncate(audio)
	if d.config.MixToMono && audio.Channels > 1 {
		audio.PCM = mixToMono(audio.PCM, audio.Channels)
		audio.Channels = 1
	}
	audio.Duration = time.Duration(float64(audio.Frames()) / float64(audio.SampleRate) * float64(time.Second))

	logger.Debug("Audio decoded", logging.Fields{
		"format":          audio.Metadata.Format,
		"codec":           audio.Metadata.Codec,
		"sample_rate":     audio.SampleRate,
		"channels":        audio.Channels,
		"source_channels": audio.Metadata.SourceChannels,
		"frames":          audio.Frames(),
		"duration":        audio.Duration,
	})

	return audio, nil
}

// truncate enforces MaxDuration on whole sample frames
func (d *Decoder) truncate(audio *AudioData) {
	if d.config.MaxDuration <= 0 {
		return
	}
	maxFrames := int(d.config.MaxDuration.Seconds() * float64(audio.SampleRate))
	if audio.Frames() > maxFrames {
		audio.PCM = audio.PCM[:maxFrames*audio.Channels]
	}
}

// GetSupportedFormats lists the formats Decode accepts
func (d *Decoder) GetSupportedFormats() []string {
	return []string{FormatWAV.String(), FormatAIFF.String(), FormatMP3.String(), FormatOgg.String()}
}

// mixToMono averages interleaved channels
func mixToMono(pcm []float32, channels int) []float32 {
	frames := len(pcm) / channels
	mono := make([]float32, frames)
	scale := 1 / float32(channels)
	for i := range frames {
		var sum float32
		for c := range channels {
			sum += pcm[i*channels+c]
		}
		mono[i] = sum * scale
	}
	return mono
}
