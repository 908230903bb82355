package source

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag.
const wavFormatPCM = 1

// DecodeWAV reads a whole PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a PCM WAV stream", ErrInvalidFile)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)

	clip := &Clip{
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		BitDepth:   bitDepth,
		Data:       make([]float32, len(buf.Data)),
	}
	IntsToFloat(clip.Data, buf.Data, bitDepth)
	return clip, nil
}

// EncodeWAV writes clip as integer PCM at bitDepth bits.
func EncodeWAV(w io.WriteSeeker, clip *Clip, bitDepth int) error {
	enc := wav.NewEncoder(w, clip.SampleRate, bitDepth, clip.Channels, wavFormatPCM)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: clip.Channels,
			SampleRate:  clip.SampleRate,
		},
		Data:           make([]int, len(clip.Data)),
		SourceBitDepth: bitDepth,
	}
	FloatToInts(buf.Data, clip.Data, bitDepth)

	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalise WAV header: %w", err)
	}
	return nil
}
