// Command resample converts a generated test tone and reports on the run.
//
// Usage:
//
//	resample -input-rate 44100 -output-rate 48000 -mode block
//	resample -mode ring -block 160 -input-rate 8000 -output-rate 48000 -json
//	resample -demo
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/bytedance/sonic"

	resampler "github.com/tphakala/go-stream-resampler"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Command-line flags
	var (
		inputRate  = flag.Float64("input-rate", defaultInputRate, "Input sample rate in Hz")
		outputRate = flag.Float64("output-rate", defaultOutputRate, "Output sample rate in Hz")
		channels   = flag.Int("channels", defaultChannels, "Number of audio channels")
		mode       = flag.String("mode", defaultMode, "Front-end: pull, block or ring")
		block      = flag.Int("block", defaultBlock, "Producer block size in frames (block and ring modes)")
		asJSON     = flag.Bool("json", false, "Print the report as JSON")
		demo       = flag.Bool("demo", false, "Run a demonstration")
	)
	flag.Parse()

	if *demo {
		return runDemo()
	}

	_, report, err := runConversion(*mode, *inputRate, *outputRate, *channels, *block)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if *asJSON {
		data, err := sonic.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printReport(report)
	return nil
}

func printReport(r *Report) {
	fmt.Printf("Resampler (%s mode):\n", r.Mode)
	fmt.Printf("  Algorithm: %s\n", r.Algorithm)
	fmt.Printf("  Ratio: %.6f (%g Hz -> %g Hz)\n", r.Ratio, r.InputRate, r.OutputRate)
	fmt.Printf("  Channels: %d\n", r.Channels)
	fmt.Printf("  Filter length: %d points\n", r.FilterLength)
	fmt.Printf("  Latency: %d samples\n", r.Latency)
	fmt.Printf("  Memory usage: %.2f KB\n", float64(r.MemoryBytes)/bytesPerKilobyte)
	fmt.Printf("  SIMD: %s\n", r.SIMD)

	fmt.Printf("\nInput frames: %d\n", r.InputFrames)
	fmt.Printf("Output frames: %d (expected %d)\n", r.OutputFrames, r.ExpectedFrames)
	fmt.Printf("Output RMS: %.4f, mean: %.6f\n", r.OutputRMS, r.OutputMean)
	fmt.Printf("Elapsed: %d us (%.0fx realtime)\n", r.ElapsedMicros, r.Realtime)
}

func runDemo() error {
	fmt.Println("=== Go Stream Resampler Demo ===")

	// Demo 1: Front-ends agree
	fmt.Println("\n1. Comparing Front-ends")
	fmt.Println("-----------------------")

	testRatios := []struct {
		from, to float64
		name     string
	}{
		{sampleRateCD, sampleRateDAT, "CD to DAT"},
		{sampleRateDAT, sampleRateCD, "DAT to CD"},
		{sampleRateCD, sampleRate2xCD, "CD to 2x"},
		{sampleRateHiRes, sampleRateCD, "Hi-res to CD"},
		{sampleRateTelephony, sampleRateDAT, "Telephony to DAT"},
	}

	for _, ratio := range testRatios {
		fmt.Printf("\n%s (%.0f Hz -> %.0f Hz, ratio: %.4f):\n",
			ratio.name, ratio.from, ratio.to, ratio.from/ratio.to)

		for _, m := range []string{modePull, modeBlock, modeRing} {
			_, r, err := runConversion(m, ratio.from, ratio.to, stereoChannels, defaultBlock)
			if err != nil {
				fmt.Printf("  %-5s: Error - %v\n", m, err)
				continue
			}
			fmt.Printf("  %-5s: %d -> %d frames, RMS %.4f, %.0fx realtime\n",
				m, r.InputFrames, r.OutputFrames, r.OutputRMS, r.Realtime)
		}
	}

	// Demo 2: Runtime rate changes
	fmt.Println("\n2. Runtime Rate Changes")
	fmt.Println("-----------------------")

	r := resampler.NewResampler(monoChannels)
	var rc resampler.RateControl
	src := resampler.NewSliceSource(generateTestSignal(int(sampleRateDAT), sampleRateDAT), true)
	for _, target := range []float64{sampleRateDAT, sampleRateCD, sampleRateHiRes, sampleRateCD} {
		if err := rc.Stage(sampleRateDAT, target); err != nil {
			return err
		}
		applied := r.ApplyStaged(&rc)
		before := src.Reads()
		for range 1000 {
			r.Next(0, src)
		}
		fmt.Printf("  -> %.0f Hz: applied=%v, 1000 outputs read %d inputs\n", target, applied, src.Reads()-before)
	}

	// Demo 3: Multi-channel processing
	fmt.Println("\n3. Multi-channel Processing")
	fmt.Println("---------------------------")

	for _, ch := range []int{monoChannels, stereoChannels, surround5_1, surround7_1} {
		_, rep, err := runConversion(modeBlock, sampleRateDAT, sampleRateCD, ch, defaultBlock)
		if err != nil {
			fmt.Printf("  %d channels: Error - %v\n", ch, err)
			continue
		}
		fmt.Printf("  %d channels: %.1f KB state, %.0fx realtime\n",
			ch, float64(rep.MemoryBytes)/bytesPerKilobyte, rep.Realtime)
	}

	fmt.Println("\n=== Demo Complete ===")
	return nil
}
