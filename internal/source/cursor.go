package source

// Cursor reads one channel of an interleaved clip sample by sample.
// Past the end it returns silence, or wraps around when looping.
type Cursor struct {
	data   []float32
	offset int
	stride int
	pos    int
	loop   bool
}

// Next returns the next sample of the channel.
func (c *Cursor) Next() float32 {
	if c.pos >= len(c.data) {
		if !c.loop || c.offset >= len(c.data) {
			return 0
		}
		c.pos = c.offset
	}
	v := c.data[c.pos]
	c.pos += c.stride
	return v
}

// Done reports whether a non-looping cursor has passed the last sample.
func (c *Cursor) Done() bool {
	return !c.loop && c.pos >= len(c.data)
}

// Remaining returns the number of samples left before the end.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.data) {
		return 0
	}
	return (len(c.data) - c.pos + c.stride - 1) / c.stride
}

// Rewind moves the cursor back to the first sample.
func (c *Cursor) Rewind() {
	c.pos = c.offset
}
