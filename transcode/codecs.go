package transcode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE

	pcmChunk = 4096
)

func decodeWAV(r io.ReadSeeker) (*AudioData, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrInvalidAudio)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV encoding %d (only integer PCM)", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	bitDepth := int(dec.BitDepth)
	pcm, err := intToFloat(buf.Data, bitDepth, bitDepth == 8)
	if err != nil {
		return nil, err
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		Metadata: &AudioMetadata{
			Format:   FormatWAV.String(),
			Codec:    fmt.Sprintf("pcm_s%d", bitDepth),
			BitDepth: bitDepth,
		},
	}, nil
}

func decodeAIFF(r io.ReadSeeker) (*AudioData, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not an AIFF file", ErrInvalidAudio)
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels < 1 {
		return nil, fmt.Errorf("%w: missing AIFF format", ErrInvalidAudio)
	}

	samples, err := readPCM(dec, format)
	if err != nil {
		return nil, err
	}

	bitDepth := int(dec.BitDepth)
	pcm, err := intToFloat(samples, bitDepth, false)
	if err != nil {
		return nil, err
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		Metadata: &AudioMetadata{
			Format:   FormatAIFF.String(),
			Codec:    fmt.Sprintf("pcm_s%dbe", bitDepth),
			BitDepth: bitDepth,
		},
	}, nil
}

// pcmSource is the chunked reader side of a go-audio decoder
type pcmSource interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// readPCM drains src in pcmChunk sized reads. A short read that carries a
// non-EOF error fails the decode.
func readPCM(src pcmSource, format *goaudio.Format) ([]int, error) {
	var samples []int
	buf := &goaudio.IntBuffer{Data: make([]int, pcmChunk), Format: format}
	for {
		n, err := src.PCMBuffer(buf)
		if n == 0 {
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
			}
			return samples, nil
		}
		samples = append(samples, buf.Data[:n]...)
		if errors.Is(err, io.EOF) {
			return samples, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
		}
	}
}

// decodeMP3 reads go-mp3's output, which is always 16-bit little-endian
// interleaved stereo
func decodeMP3(r io.Reader) (*AudioData, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	pcm := make([]float32, len(raw)/2)
	for i := range pcm {
		pcm[i] = float32(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / 32768.0
	}

	const channels = 2
	pcm = pcm[:len(pcm)/channels*channels]

	return &AudioData{
		PCM:        pcm,
		SampleRate: dec.SampleRate(),
		Channels:   channels,
		Metadata: &AudioMetadata{
			Format:   FormatMP3.String(),
			Codec:    "mp3",
			BitDepth: 16,
		},
	}, nil
}

func decodeOgg(r io.Reader) (*AudioData, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}
	if format.Channels < 1 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidAudio)
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		Metadata: &AudioMetadata{
			Format: FormatOgg.String(),
			Codec:  "vorbis",
		},
	}, nil
}

// intToFloat scales integer PCM of the given bit depth into [-1, 1).
// 8-bit WAV data is unsigned and centered on 128.
func intToFloat(data []int, bitDepth int, unsigned8 bool) ([]float32, error) {
	if bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrUnsupportedFormat, bitDepth)
	}

	scale := 1 / float64(int64(1)<<(bitDepth-1))
	offset := 0
	if unsigned8 {
		offset = 128
	}

	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(float64(v-offset) * scale)
	}
	return out, nil
}

// DecodeFloat32LE reinterprets raw little-endian IEEE 754 bytes, as held by
// a JavaScript Float32Array, as samples
func DecodeFloat32LE(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of float32 samples", ErrInvalidAudio, len(raw))
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return samples, nil
}
