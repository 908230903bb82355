package source

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// WAV header layout
const (
	wavHeaderSize      = 44
	wavRiffHeaderSize  = 36 // file size - 8 = wavRiffHeaderSize + data size
	wavPCMSubchunkSize = 16
	wavFileSizeOffset  = 4
	wavDataSizeOffset  = 40

	bitsPerByte = 8
	bitShift8   = 8
	bitShift16  = 16

	wavWriterBufferSize = 256 * 1024
	uint32Size          = 4
)

// WAVWriter streams integer PCM into a WAV file without per-block
// allocations. Sizes in the header are patched on Close, so the
// destination must be seekable.
type WAVWriter struct {
	w        *bufio.Writer
	dst      io.WriteSeeker
	channels int
	bitDepth int
	dataSize uint32

	byteBuf []byte
	intBuf  []int
}

// NewWAVWriter writes a header with placeholder sizes and returns a writer
// for interleaved samples. Supported depths are 16, 24 and 32 bits.
func NewWAVWriter(dst io.WriteSeeker, sampleRate, bitDepth, channels int) (*WAVWriter, error) {
	switch bitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
	default:
		return nil, fmt.Errorf("%w: %d-bit output", ErrUnsupportedFormat, bitDepth)
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFile, channels)
	}

	w := &WAVWriter{
		w:        bufio.NewWriterSize(dst, wavWriterBufferSize),
		dst:      dst,
		channels: channels,
		bitDepth: bitDepth,
	}
	if err := w.writeHeader(sampleRate); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}
	return w, nil
}

func (w *WAVWriter) writeHeader(sampleRate int) error {
	bytesPerSample := w.bitDepth / bitsPerByte
	blockAlign := w.channels * bytesPerSample
	byteRate := sampleRate * blockAlign

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavPCMSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(w.bitDepth))
	copy(header[36:40], "data")

	_, err := w.w.Write(header)
	return err
}

// WriteInts writes interleaved integer samples.
func (w *WAVWriter) WriteInts(samples []int) error {
	bytesPerSample := w.bitDepth / bitsPerByte
	needed := len(samples) * bytesPerSample
	if len(w.byteBuf) < needed {
		w.byteBuf = make([]byte, needed)
	}
	buf := w.byteBuf[:needed]

	switch w.bitDepth {
	case bitsPerSample16:
		for i, s := range samples {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(s)))
		}
	case bitsPerSample24:
		for i, s := range samples {
			buf[i*3] = byte(s)
			buf[i*3+1] = byte(s >> bitShift8)
			buf[i*3+2] = byte(s >> bitShift16)
		}
	default:
		for i, s := range samples {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(int32(s)))
		}
	}

	written, err := w.w.Write(buf)
	w.dataSize += uint32(written)
	return err
}

// WriteFloats converts normalised interleaved samples and writes them.
func (w *WAVWriter) WriteFloats(samples []float32) error {
	if len(w.intBuf) < len(samples) {
		w.intBuf = make([]int, len(samples))
	}
	n := FloatToInts(w.intBuf, samples, w.bitDepth)
	return w.WriteInts(w.intBuf[:n])
}

// Frames returns the number of sample frames written so far.
func (w *WAVWriter) Frames() int64 {
	return int64(w.dataSize) / int64(w.channels*w.bitDepth/bitsPerByte)
}

// Close flushes buffered data and patches the header sizes. It does not
// close the destination.
func (w *WAVWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}

	sizeBytes := make([]byte, uint32Size)
	patch := func(offset int64, v uint32) error {
		if _, err := w.dst.Seek(offset, io.SeekStart); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(sizeBytes, v)
		_, err := w.dst.Write(sizeBytes)
		return err
	}

	if err := patch(wavFileSizeOffset, wavRiffHeaderSize+w.dataSize); err != nil {
		return fmt.Errorf("failed to patch RIFF size: %w", err)
	}
	if err := patch(wavDataSizeOffset, w.dataSize); err != nil {
		return fmt.Errorf("failed to patch data size: %w", err)
	}
	return nil
}
