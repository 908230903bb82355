package main

import (
	"fmt"
	"log"
	"math"
	"os"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/internal/simdops"
	"github.com/tphakala/go-stream-resampler/internal/source"
)

// frameWriter receives interleaved, normalised output frames.
type frameWriter interface {
	WriteFloats(samples []float32) error
}

// converter streams a decoded clip through a planar resampler one block at
// a time, the way a live input would arrive.
type converter struct {
	r           *resampler.Resampler
	channels    int
	blockFrames int
	inRate      float64
	outRate     float64

	inBufs  [][]float32 // per-channel input, pending carry at the front
	outBufs [][]float32 // per-channel output of one block
	inView  [][]float32
	outView [][]float32
	frame   []float32 // interleaved output scratch
	pending int       // input frames carried from the previous block
}

// newConverter creates a converter for channels planar streams.
func newConverter(channels int, inRate, outRate float64, blockFrames int, parallel bool) (*converter, error) {
	r, err := resampler.New(&resampler.Config{
		InputRate:      inRate,
		OutputRate:     outRate,
		Channels:       channels,
		InputStride:    1,
		OutputStride:   1,
		EnableParallel: parallel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	blockFrames = max(blockFrames, minBlockFrames)
	// Input carry plus one block, and the outputs one such span can yield.
	inCap := blockFrames + carryFrames
	outCap := int(math.Ceil(float64(inCap)*outRate/inRate)) + outputBufferMargin

	c := &converter{
		r:           r,
		channels:    channels,
		blockFrames: blockFrames,
		inRate:      inRate,
		outRate:     outRate,
		inBufs:      make([][]float32, channels),
		outBufs:     make([][]float32, channels),
		inView:      make([][]float32, channels),
		outView:     make([][]float32, channels),
		frame:       make([]float32, outCap*channels),
	}
	for ch := range channels {
		c.inBufs[ch] = make([]float32, inCap)
		c.outBufs[ch] = make([]float32, outCap)
	}
	return c, nil
}

// load deinterleaves up to blockFrames frames of data after the carried
// input and returns the number of frames taken from data.
func (c *converter) load(data []float32) int {
	n := min(len(data)/c.channels, c.blockFrames)
	if c.channels == stereoChannels {
		simdops.Deinterleave(data[:n*stereoChannels],
			c.inBufs[0][c.pending:c.pending+n], c.inBufs[1][c.pending:c.pending+n])
	} else {
		for i := range n {
			base := i * c.channels
			for ch := range c.channels {
				c.inBufs[ch][c.pending+i] = data[base+ch]
			}
		}
	}
	c.pending += n
	return n
}

// pad appends n frames of silence after the carried input.
func (c *converter) pad(n int) {
	for ch := range c.channels {
		clear(c.inBufs[ch][c.pending : c.pending+n])
	}
	c.pending += n
}

// step runs the block form over the loaded input, moves any unconsumed
// frames to the front and returns the interleaved output.
func (c *converter) step() ([]float32, error) {
	for ch := range c.channels {
		c.inView[ch] = c.inBufs[ch][:c.pending]
		c.outView[ch] = c.outBufs[ch]
	}
	consumed, produced, err := c.r.ProcessPlanar(c.inView, c.outView)
	if err != nil {
		return nil, fmt.Errorf("resampling failed: %w", err)
	}

	// Every channel runs at the same ratio from the same position, so the
	// counts agree across channels.
	used, made := consumed[0], produced[0]
	for ch := range c.channels {
		copy(c.inBufs[ch], c.inBufs[ch][used:c.pending])
	}
	c.pending -= used

	return c.interleave(made), nil
}

func (c *converter) interleave(frames int) []float32 {
	out := c.frame[:frames*c.channels]
	if c.channels == stereoChannels {
		simdops.Interleave(out, c.outBufs[0][:frames], c.outBufs[1][:frames])
		return out
	}
	for i := range frames {
		base := i * c.channels
		for ch := range c.channels {
			out[base+ch] = c.outBufs[ch][i]
		}
	}
	return out
}

// convertClip resamples clip and writes the result to w. The tail is
// completed with silence so that every output instant inside the input
// gets a sample. It returns the number of output frames written.
func convertClip(clip *source.Clip, c *converter, w frameWriter, progress *progressTracker) (int64, error) {
	want := int64(resampler.OutputLength(clip.Frames(), c.inRate, c.outRate))
	var written int64

	emit := func(out []float32) error {
		frames := int64(len(out) / c.channels)
		if written+frames > want {
			frames = want - written
			out = out[:frames*int64(c.channels)]
		}
		if frames == 0 {
			return nil
		}
		written += frames
		if err := w.WriteFloats(out); err != nil {
			return fmt.Errorf("failed to write audio data: %w", err)
		}
		return nil
	}

	data := clip.Data
	var read int64
	for len(data) >= c.channels {
		n := c.load(data)
		data = data[n*c.channels:]
		read += int64(n)

		out, err := c.step()
		if err != nil {
			return written, err
		}
		if err := emit(out); err != nil {
			return written, err
		}
		progress.reportIfNeeded(read)
	}

	for range maxTailSteps {
		if written >= want {
			break
		}
		c.pad(max(carryFrames-c.pending, 0))
		out, err := c.step()
		if err != nil {
			return written, err
		}
		if err := emit(out); err != nil {
			return written, err
		}
	}

	return written, nil
}

// outputBitDepth keeps the input depth when the writer supports it.
func outputBitDepth(requested, input int) int {
	if requested != 0 {
		return requested
	}
	switch input {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
		return input
	default:
		return bitsPerSample16
	}
}

// wavOutputWriter wraps the output file and streaming writer.
type wavOutputWriter struct {
	file   *os.File
	writer *source.WAVWriter
}

// createWAVOutput creates output file and writer.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	writer, err := source.NewWAVWriter(outputFile, sampleRate, bitDepth, channels)
	if err != nil {
		_ = outputFile.Close()
		return nil, fmt.Errorf("failed to create WAV writer: %w", err)
	}

	return &wavOutputWriter{file: outputFile, writer: writer}, nil
}

// WriteFloats writes interleaved samples to the output file.
func (w *wavOutputWriter) WriteFloats(samples []float32) error {
	return w.writer.WriteFloats(samples)
}

// Close patches the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	verbose      bool
}

// newProgressTracker creates a new progress tracker.
func newProgressTracker(totalFrames int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalFrames: totalFrames,
		verbose:     verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentFrames int64) {
	if p == nil || !p.verbose || p.totalFrames == 0 {
		return
	}

	progress := int(float64(currentFrames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}
