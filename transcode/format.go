package transcode

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a container/codec the decoder understands
type Format int

const (
	FormatUnknown Format = iota
	FormatWAV
	FormatAIFF
	FormatMP3
	FormatOgg
)

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatAIFF:
		return "aiff"
	case FormatMP3:
		return "mp3"
	case FormatOgg:
		return "ogg"
	default:
		return "unknown"
	}
}

// ParseFormat converts a format name or file extension into a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "wav", "wave":
		return FormatWAV, nil
	case "aiff", "aif", "aifc":
		return FormatAIFF, nil
	case "mp3":
		return FormatMP3, nil
	case "ogg", "oga", "vorbis":
		return FormatOgg, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// FormatFromPath guesses the format from a file extension
func FormatFromPath(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return FormatUnknown
	}
	return f
}

// sniffFormat recognizes a format from the first bytes of a stream
func sniffFormat(header []byte) Format {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return FormatWAV
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("FORM")) &&
		(bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))):
		return FormatAIFF
	case len(header) >= 4 && bytes.Equal(header[:4], []byte("OggS")):
		return FormatOgg
	case len(header) >= 3 && bytes.Equal(header[:3], []byte("ID3")):
		return FormatMP3
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		// MPEG frame sync
		return FormatMP3
	default:
		return FormatUnknown
	}
}
