// Command resample-play plays an audio file, or a test tone, through the
// pull-form resampler at the device rate with a live speed knob.
//
// Usage:
//
//	resample-play song.flac
//	resample-play -device-rate 44100 call.ul
//	resample-play -tone 440 -tone-rate 8000
//
// The arrow keys change playback speed while playing. Each change is staged
// on a RateControl and picked up by the audio callback at its next block.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ebitengine/oto/v3"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/internal/source"
)

const (
	defaultDeviceRate = 48000
	defaultToneHz     = 440.0
	defaultToneRate   = 22050

	// oto is driven with 16-bit signed little-endian samples.
	bitsPerSample16   = 16
	bytesPerSample    = 2
	maxDeviceChannels = 2

	toneAmplitude = 0.25

	// Speed knob
	speedStep = 1.05
	minSpeed  = 0.25
	maxSpeed  = 4.0

	// Meter
	uiRefresh  = 50 * time.Millisecond
	meterWidth = 30
	silenceDB  = -60.0

	deviceBuffer = 50 * time.Millisecond
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	deviceRate := flag.Int("device-rate", defaultDeviceRate, "Output device sample rate in Hz")
	toneHz := flag.Float64("tone", defaultToneHz, "Test tone frequency when no file is given")
	toneRate := flag.Float64("tone-rate", defaultToneRate, "Sample rate the test tone is generated at")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	var (
		sources   []resampler.Source
		inputRate float64
		name      string
	)
	if args := flag.Args(); len(args) > 0 {
		clip, err := source.Load(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		sources = clipSources(clip)
		inputRate = float64(clip.SampleRate)
		name = filepath.Base(args[0])
		if *verbose {
			log.Printf("Input: %d Hz, %d channels, %.1fs", clip.SampleRate, clip.Channels, clip.Seconds())
		}
	} else {
		sources = []resampler.Source{toneSource(*toneHz, *toneRate)}
		inputRate = *toneRate
		name = fmt.Sprintf("%g Hz tone", *toneHz)
	}

	var rc resampler.RateControl
	stream, err := newPCMStream(sources, inputRate, float64(*deviceRate), deviceFrames(*deviceRate, deviceBuffer), &rc)
	if err != nil {
		return fmt.Errorf("failed to create resampler: %w", err)
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *deviceRate,
		ChannelCount: len(sources),
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   deviceBuffer,
	})
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(stream)
	player.Play()
	defer func() { _ = player.Close() }()

	if *verbose {
		log.Printf("Audio output initialized: %dHz, %d channels", *deviceRate, len(sources))
	}

	p := tea.NewProgram(newModel(&rc, stream, name, inputRate, float64(*deviceRate)), tea.WithOutput(os.Stderr))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui failed: %w", err)
	}
	return nil
}
