package engine

// Process converts one block of channel ch. It reads input samples at
// in[0], in[s], in[2s], ... (s = input stride) and writes output samples at
// out[0], out[t], out[2t], ... (t = output stride), stopping as soon as
// either slice is exhausted.
//
// consumed and produced are element counts: the caller keeps in[consumed:]
// for the next call and uses out[:produced]. With k samples read the count
// is min(k*s, len(in)), and likewise for the output.
//
// Running out of input or output space is the normal partial-progress
// outcome, not an error. Priming needs three readable samples in one call;
// with fewer the call consumes and produces nothing. An invalid channel
// returns ErrInvalidChannel and touches neither slice.
//
// For the same input sequence, the produced values equal those of Next.
func (e *Engine[F]) Process(ch int, in, out []F) (consumed, produced int, err error) {
	if !e.valid(ch) {
		return 0, 0, ErrInvalidChannel
	}
	c := &e.channels[ch]
	inStep, outStep := e.inputStride, e.outputStride

	i, o := 0, 0

	if c.ratio == 1 {
		for i < len(in) && o < len(out) {
			out[o] = in[i]
			i += inStep
			o += outStep
		}
		return min(i, len(in)), min(o, len(out)), nil
	}

	if !c.primed {
		if len(out) == 0 || len(in) <= (primeSamples-1)*inStep {
			return 0, 0, nil
		}
		c.prime(in[0], in[inStep], in[2*inStep])
		i = primeSamples * inStep
	}

	for o < len(out) {
		for c.phase >= 1 && i < len(in) {
			c.skip1(in[i])
			i += inStep
		}
		if c.phase >= 1 {
			break
		}
		out[o] = c.emit()
		o += outStep
	}

	return min(i, len(in)), min(o, len(out)), nil
}

// ProcessSpans is Process with in-place truncation: on return *in holds
// the consumed prefix and *out the produced prefix. On error both slices
// are left as they were.
func (e *Engine[F]) ProcessSpans(ch int, in, out *[]F) error {
	consumed, produced, err := e.Process(ch, *in, *out)
	if err != nil {
		return err
	}
	*in = (*in)[:consumed]
	*out = (*out)[:produced]
	return nil
}
