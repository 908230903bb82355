package resampler

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tphakala/go-stream-resampler/internal/engine"
	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// Common errors returned by the resampler.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid resampler configuration")

	// ErrInvalidChannel indicates a channel index outside [0, Channels()).
	ErrInvalidChannel = engine.ErrInvalidChannel

	// ErrInvalidRate indicates a rate pair SetRate would reject.
	ErrInvalidRate = engine.ErrInvalidRate
)

// Pull-form sample sources for float32 engines.
type (
	// Source supplies input samples one at a time to Next.
	Source = engine.Source[float32]

	// SourceFunc adapts a plain function to Source.
	SourceFunc = engine.SourceFunc[float32]

	// SliceSource reads from a slice, returning silence past the end
	// unless it loops.
	SliceSource = engine.SliceSource[float32]
)

// Pull-form sample sources for float64 engines.
type (
	Source64      = engine.Source[float64]
	SourceFunc64  = engine.SourceFunc[float64]
	SliceSource64 = engine.SliceSource[float64]
)

// RateControl stages rate changes from any goroutine for a later
// ApplyStaged call on the processing goroutine.
type RateControl = engine.RateControl

// NewSliceSource creates a float32 source over samples.
func NewSliceSource(samples []float32, loop bool) *SliceSource {
	return engine.NewSliceSource(samples, loop)
}

// NewSliceSource64 creates a float64 source over samples.
func NewSliceSource64(samples []float64, loop bool) *SliceSource64 {
	return engine.NewSliceSource(samples, loop)
}

// Config holds resampling configuration for the construction-time path.
type Config struct {
	// InputRate is the sample rate of input audio in Hz.
	InputRate float64

	// OutputRate is the desired output sample rate in Hz.
	OutputRate float64

	// Channels is the number of audio channels to process (1 to MaxChannels).
	Channels int

	// InputStride is the element distance between consecutive samples of one
	// channel in input buffers. Zero selects Channels (interleaved layout).
	InputStride int

	// OutputStride is the same for output buffers.
	OutputStride int

	// EnableParallel lets ProcessPlanar convert channels concurrently.
	// Has no effect on mono audio.
	EnableParallel bool
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if math.IsNaN(c.InputRate) || math.IsNaN(c.OutputRate) || c.InputRate <= 0 || c.OutputRate <= 0 {
		return fmt.Errorf("%w: sample rates must be positive", ErrInvalidConfig)
	}

	if math.IsInf(c.InputRate, 0) || math.IsInf(c.OutputRate, 0) {
		return fmt.Errorf("%w: sample rates must be finite", ErrInvalidConfig)
	}

	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if c.Channels > MaxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, MaxChannels)
	}

	if c.InputStride < 0 || c.OutputStride < 0 {
		return fmt.Errorf("%w: strides must not be negative", ErrInvalidConfig)
	}

	ratio := c.OutputRate / c.InputRate
	if ratio < minRatioFactor || ratio > maxRatioFactor {
		return fmt.Errorf("%w: resampling ratio out of range (%v to %v)", ErrInvalidConfig, minRatioFactor, maxRatioFactor)
	}

	if err := engine.ValidateRates(c.InputRate, c.OutputRate); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// strides resolves the zero-means-interleaved defaults.
func (c *Config) strides() (in, out int) {
	in, out = c.InputStride, c.OutputStride
	if in == 0 {
		in = c.Channels
	}
	if out == 0 {
		out = c.Channels
	}
	return in, out
}

// Resampler is a float32 streaming converter. It embeds the engine, so the
// pull form (Next), the block form (Process, ProcessSpans) and rate, stride
// and flush control are all available directly.
type Resampler struct {
	*engine.Engine[float32]
	parallel bool
}

// Resampler64 is the float64 counterpart of Resampler.
type Resampler64 struct {
	*engine.Engine[float64]
	parallel bool
}

// NewResampler creates a float32 resampler at unity ratio. The channel count
// is clamped to [1, MaxChannels].
func NewResampler(channels int) *Resampler {
	return &Resampler{Engine: engine.New[float32](channels)}
}

// NewResampler64 creates a float64 resampler at unity ratio. The channel count
// is clamped to [1, MaxChannels].
func NewResampler64(channels int) *Resampler64 {
	return &Resampler64{Engine: engine.New[float64](channels)}
}

// New creates a float32 resampler from config.
func New(config *Config) (*Resampler, error) {
	e, err := newEngine[float32](config)
	if err != nil {
		return nil, err
	}
	return &Resampler{Engine: e, parallel: config.EnableParallel}, nil
}

// New64 creates a float64 resampler from config.
func New64(config *Config) (*Resampler64, error) {
	e, err := newEngine[float64](config)
	if err != nil {
		return nil, err
	}
	return &Resampler64{Engine: e, parallel: config.EnableParallel}, nil
}

func newEngine[F simdops.Float](config *Config) (*engine.Engine[F], error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := engine.New[F](config.Channels)
	if !e.SetRate(config.InputRate, config.OutputRate) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidRate)
	}
	in, out := config.strides()
	e.SetInputStride(in)
	e.SetOutputStride(out)
	return e, nil
}

// ProcessPlanar runs the block form over one buffer per channel. Strides
// must be 1. consumed and produced are reported per channel.
func (r *Resampler) ProcessPlanar(in, out [][]float32) (consumed, produced [MaxChannels]int, err error) {
	return processPlanar(r.Engine, r.parallel, in, out)
}

// ProcessPlanar runs the block form over one buffer per channel. Strides
// must be 1. consumed and produced are reported per channel.
func (r *Resampler64) ProcessPlanar(in, out [][]float64) (consumed, produced [MaxChannels]int, err error) {
	return processPlanar(r.Engine, r.parallel, in, out)
}

func processPlanar[F simdops.Float](e *engine.Engine[F], parallel bool, in, out [][]F) (consumed, produced [MaxChannels]int, err error) {
	n := e.Channels()
	if len(in) != n || len(out) != n {
		return consumed, produced, fmt.Errorf("%w: got %d input and %d output buffers for %d channels",
			ErrInvalidChannel, len(in), len(out), n)
	}
	if e.InputStride() != 1 || e.OutputStride() != 1 {
		return consumed, produced, fmt.Errorf("%w: planar processing needs unit strides", ErrInvalidConfig)
	}

	if !parallel || n == 1 {
		for ch := range n {
			// Channel indices are in range, so Process cannot fail here.
			consumed[ch], produced[ch], _ = e.Process(ch, in[ch], out[ch])
		}
		return consumed, produced, nil
	}

	// Channels share no mutable state, so each runs on its own goroutine.
	var wg sync.WaitGroup
	for ch := range n {
		wg.Go(func() {
			consumed[ch], produced[ch], _ = e.Process(ch, in[ch], out[ch])
		})
	}
	wg.Wait()
	return consumed, produced, nil
}

// Info returns information about the resampler implementation.
type Info struct {
	// Algorithm describes the resampling algorithm in use.
	Algorithm string

	// FilterLength is the number of input points each output depends on.
	FilterLength int

	// Latency is the number of input samples read ahead of the current
	// output position.
	Latency int

	// Channels is the number of active channels.
	Channels int

	// MemoryUsage is the approximate memory usage in bytes.
	MemoryUsage int64

	// SIMDType describes the SIMD instruction set used by buffer helpers.
	SIMDType string
}

// infoSource is the engine surface GetInfo reads from.
type infoSource interface {
	FilterLength() int
	Lookahead() int
	Channels() int
	MemoryUsage() int64
}

// GetInfo returns information about a resampler.
func GetInfo(r infoSource) Info {
	return Info{
		Algorithm:    algorithmName,
		FilterLength: r.FilterLength(),
		Latency:      r.Lookahead(),
		Channels:     r.Channels(),
		MemoryUsage:  r.MemoryUsage(),
		SIMDType:     simdops.Info(),
	}
}
