package resampler

import (
	"github.com/tphakala/go-stream-resampler/internal/engine"
)

// Channel constants
const (
	monoChannels   = 1
	stereoChannels = 2 // Stereo channel count (used by interleave functions)

	// MaxChannels is the largest channel count a Resampler supports.
	MaxChannels = engine.MaxChannels
)

// Resampling ratio limits, expressed as output rate / input rate.
const (
	minRatioFactor = 1.0 / 256.0 // Minimum resampling ratio (1/256)
	maxRatioFactor = 256.0       // Maximum resampling ratio (256x)
)

// One-shot conversion constants
const (
	// Guards ceil(n*out/in) against rounding up an exact integer.
	lengthEpsilon = 1e-9
)

// Info strings
const (
	algorithmName = "catmull-rom cubic"
)
