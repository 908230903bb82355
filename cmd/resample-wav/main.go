// Command resample-wav converts an audio file to a WAV file at a target
// sample rate.
//
// Usage:
//
//	resample-wav -rate 48 input.wav output.wav
//	resample-wav -rate 16 -bits 16 song.flac speech_16k.wav
//	resample-wav -rate 44.1 -block 160 call.ul call_cd.wav
//	resample-wav -rate 48 -parallel=false input.mp3 out.wav   # Disable parallel processing
//
// WAV, MP3, FLAC and raw 8 kHz mu-law inputs are supported. The input is fed
// to the converter in fixed-size blocks, exercising the same streaming path
// a live source would use.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/tphakala/go-stream-resampler/internal/source"
)

const (
	// Frames per block fed to the converter.
	defaultBlockFrames = 4096

	// Smallest block that can prime the interpolator on its own.
	minBlockFrames = 3

	// Input frames a block may carry over: the priming window.
	carryFrames = 3

	// Output buffer margin to handle rounding at block edges
	outputBufferMargin = 8

	// Silence blocks fed after the input to emit the final outputs
	maxTailSteps = 4

	stereoChannels = 2

	// Output bit depths
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	kHzToHz          = 1000
	progressInterval = 10 // percent
	percentScale     = 100

	defaultRateKHz  = 48.0
	minRequiredArgs = 2
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// jobOptions controls one file conversion.
type jobOptions struct {
	targetRate int
	bits       int
	block      int
	parallel   bool
	verbose    bool
}

func run() error {
	rateKHz := flag.Float64("rate", defaultRateKHz, "Target sample rate in kHz (8, 16, 44.1, 48, 96, ...)")
	bits := flag.Int("bits", 0, "Output bit depth: 16, 24 or 32 (0 keeps the input depth)")
	block := flag.Int("block", defaultBlockFrames, "Input frames per converter call")
	parallel := flag.Bool("parallel", true, "Convert channels of a block concurrently")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write a CPU profile to this file")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		flag.Usage()
		return errors.New("need an input and an output path")
	}
	inputPath, outputPath := args[0], args[1]

	if *cpuprofile != "" {
		stop, err := startProfile(*cpuprofile)
		if err != nil {
			return err
		}
		defer stop()
	}

	opts := jobOptions{
		targetRate: int(*rateKHz * kHzToHz),
		bits:       *bits,
		block:      *block,
		parallel:   *parallel,
		verbose:    *verbose,
	}
	if opts.verbose {
		format, _ := source.FormatOf(inputPath)
		log.Printf("%s (%s) -> %s at %d Hz, %d-frame blocks, parallel=%v",
			inputPath, format, outputPath, opts.targetRate, opts.block, opts.parallel)
	}

	start := time.Now()
	stats, err := resampleFile(inputPath, outputPath, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("%s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz -> %d Hz, ratio %.6f, %d channels, %d-bit\n",
		stats.inputRate, stats.outputRate, float64(stats.inputRate)/float64(stats.outputRate),
		stats.channels, stats.bitDepth)
	fmt.Printf("  %d frames -> %d frames in %.2fs (%.1fx realtime)\n",
		stats.inputFrames, stats.outputFrames, elapsed.Seconds(),
		float64(stats.inputFrames)/float64(stats.inputRate)/elapsed.Seconds())
	return nil
}

func usage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s [options] input output.wav\n\nOptions:\n", name)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nInputs: .wav, .mp3, .flac, .ul (raw 8 kHz mu-law)\n")
}

// startProfile begins CPU profiling into path and returns the stop func.
func startProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}, nil
}

type resampleStats struct {
	inputRate    int
	outputRate   int
	channels     int
	bitDepth     int
	inputFrames  int64
	outputFrames int64
}

// resampleFile decodes inputPath, streams it through the converter in
// opts.block-frame calls and writes exactly OutputLength frames.
func resampleFile(inputPath, outputPath string, opts jobOptions) (stats *resampleStats, err error) {
	clip, err := source.Load(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	if opts.verbose {
		log.Printf("Decoded %d Hz, %d channels, %d-bit, %.2fs",
			clip.SampleRate, clip.Channels, clip.BitDepth, clip.Seconds())
	}
	if clip.SampleRate == opts.targetRate {
		return nil, fmt.Errorf("input already at target rate %d Hz", opts.targetRate)
	}

	conv, err := newConverter(clip.Channels, float64(clip.SampleRate), float64(opts.targetRate), opts.block, opts.parallel)
	if err != nil {
		return nil, err
	}

	bitDepth := outputBitDepth(opts.bits, clip.BitDepth)
	output, err := createWAVOutput(outputPath, opts.targetRate, bitDepth, clip.Channels)
	if err != nil {
		return nil, err
	}
	// The WAV header is finalised on Close.
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	progress := newProgressTracker(int64(clip.Frames()), opts.verbose)
	written, err := convertClip(clip, conv, output, progress)
	if err != nil {
		return nil, err
	}

	return &resampleStats{
		inputRate:    clip.SampleRate,
		outputRate:   opts.targetRate,
		channels:     clip.Channels,
		bitDepth:     bitDepth,
		inputFrames:  int64(clip.Frames()),
		outputFrames: written,
	}, nil
}
