// Package source decodes audio files into normalised float32 clips and
// exposes their channels as pull sources for the resampling engine.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Errors returned by the decoders.
var (
	// ErrUnsupportedFormat indicates a file extension with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidFile indicates a file the decoder could not parse.
	ErrInvalidFile = errors.New("invalid audio file")
)

// Format identifies a container or codec.
type Format string

// Supported formats.
const (
	FormatWAV  Format = "wav"
	FormatMP3  Format = "mp3"
	FormatFLAC Format = "flac"
	FormatULaw Format = "ulaw"
)

// Clip is a fully decoded piece of audio. Data is interleaved and
// normalised to [-1, 1].
type Clip struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Data       []float32
}

// Frames returns the number of sample frames in the clip.
func (c *Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Data) / c.Channels
}

// Seconds returns the clip duration.
func (c *Clip) Seconds() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(c.Frames()) / float64(c.SampleRate)
}

// Channel returns a cursor over channel ch, or nil if ch is out of range.
func (c *Clip) Channel(ch int, loop bool) *Cursor {
	if ch < 0 || ch >= c.Channels {
		return nil
	}
	return &Cursor{data: c.Data, offset: ch, stride: c.Channels, pos: ch, loop: loop}
}

// FormatOf picks a decoder from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".mp3":
		return FormatMP3, nil
	case ".flac":
		return FormatFLAC, nil
	case ".ul", ".ulaw", ".mulaw", ".u8":
		return FormatULaw, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load opens path and decodes it according to its extension.
// Raw mu-law files carry no header and are assumed to be 8 kHz mono.
func Load(path string) (*Clip, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var clip *Clip
	switch format {
	case FormatWAV:
		clip, err = DecodeWAV(f)
	case FormatMP3:
		clip, err = DecodeMP3(f)
	case FormatFLAC:
		clip, err = DecodeFLAC(f)
	case FormatULaw:
		clip, err = DecodeULaw(f, ULawSampleRate)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return clip, nil
}
