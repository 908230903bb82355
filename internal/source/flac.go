package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// DecodeFLAC decodes a whole FLAC stream.
func DecodeFLAC(r io.Reader) (*Clip, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if channels == 0 || bitDepth == 0 {
		return nil, fmt.Errorf("%w: %d channels, %d-bit", ErrInvalidFile, channels, bitDepth)
	}
	scale := float32(1 / float64(int64(1)<<(bitDepth-1)))

	clip := &Clip{
		SampleRate: int(info.SampleRate),
		Channels:   channels,
		BitDepth:   bitDepth,
		Data:       make([]float32, 0, int(info.NSamples)*channels),
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode FLAC frame: %w", err)
		}

		for i := range int(frame.BlockSize) {
			for ch := range channels {
				clip.Data = append(clip.Data, float32(frame.Subframes[ch].Samples[i])*scale)
			}
		}
	}
	return clip, nil
}
