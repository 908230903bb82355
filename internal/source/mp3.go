package source

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// go-mp3 always yields 16-bit little-endian stereo.
const (
	mp3Channels       = 2
	mp3BytesPerSample = 2
)

// DecodeMP3 decodes a whole MP3 stream.
func DecodeMP3(r io.Reader) (*Clip, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	numSamples := len(pcm) / mp3BytesPerSample
	numSamples -= numSamples % mp3Channels

	clip := &Clip{
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
		BitDepth:   bitsPerSample16,
		Data:       make([]float32, numSamples),
	}
	pcm16ToFloat(clip.Data, pcm)
	return clip, nil
}

// pcm16ToFloat normalises 16-bit little-endian PCM bytes into dst.
func pcm16ToFloat(dst []float32, pcm []byte) {
	for i := range dst {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		dst[i] = float32(sample)
	}
	simdops.Float32Ops().Scale(dst, dst, float32(1/maxInt16))
}
