package source

import (
	"fmt"
	"io"

	"github.com/zaf/g711"
)

// ULawSampleRate is the G.711 telephony rate assumed for headerless files.
const ULawSampleRate = 8000

// DecodeULaw decodes headerless mono G.711 mu-law bytes recorded at sampleRate.
func DecodeULaw(r io.Reader, sampleRate int) (*Clip, error) {
	encoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read mu-law data: %w", err)
	}

	pcm := g711.DecodeUlaw(encoded)
	clip := &Clip{
		SampleRate: sampleRate,
		Channels:   1,
		BitDepth:   bitsPerSample16,
		Data:       make([]float32, len(pcm)/2),
	}
	pcm16ToFloat(clip.Data, pcm)
	return clip, nil
}

// EncodeULaw converts a mono clip to G.711 mu-law bytes.
func EncodeULaw(clip *Clip) []byte {
	ints := make([]int, len(clip.Data))
	FloatToInts(ints, clip.Data, bitsPerSample16)

	pcm := make([]byte, 2*len(ints))
	for i, s := range ints {
		pcm[2*i] = byte(s)
		pcm[2*i+1] = byte(s >> bitShift8)
	}
	return g711.EncodeUlaw(pcm)
}
