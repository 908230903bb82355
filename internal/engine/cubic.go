package engine

import (
	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// channelState holds one channel's interpolation history and phase accumulator.
//
// While primed, phase is in [0, 1) immediately before each output sample is
// evaluated. x0 and x1 are the samples the curve passes through at phase 0
// and phase 1.
type channelState[F simdops.Float] struct {
	ratio F // input rate / output rate
	phase F // position between x0 and x1, in input samples

	xm1, x0, x1, x2 F

	primed bool
}

// reset returns the channel to its construction state with the given ratio.
func (c *channelState[F]) reset(ratio F) {
	*c = channelState[F]{ratio: ratio}
}

// prime seeds the 4-point window from the first three input samples.
func (c *channelState[F]) prime(x0, x1, x2 F) {
	c.xm1 = 0
	c.x0 = x0
	c.x1 = x1
	c.x2 = x2
	c.phase = 0
	c.primed = true
}

// skip1 slides the window forward by one input sample.
func (c *channelState[F]) skip1(next F) {
	c.xm1 = c.x0
	c.x0 = c.x1
	c.x1 = c.x2
	c.x2 = next
	c.phase--
}

// skip2 is equivalent to two consecutive skip1 calls.
func (c *channelState[F]) skip2(n1, n2 F) {
	c.xm1 = c.x1
	c.x0 = c.x2
	c.x1 = n1
	c.x2 = n2
	c.phase -= 2
}

// skip3 is equivalent to three consecutive skip1 calls.
func (c *channelState[F]) skip3(n1, n2, n3 F) {
	c.xm1 = c.x2
	c.x0 = n1
	c.x1 = n2
	c.x2 = n3
	c.phase -= 3
}

// interpolate evaluates the Catmull-Rom curve through x0..x1 at the current phase.
func (c *channelState[F]) interpolate() F {
	a := (catmullThree*(c.x0-c.x1) - c.xm1 + c.x2) / catmullHalf
	b := catmullTwo*c.x1 + c.xm1 - (catmullFive*c.x0+c.x2)/catmullHalf
	d := (c.x1 - c.xm1) / catmullHalf

	p := c.phase
	return ((a*p+b)*p+d)*p + c.x0
}

// emit produces one output sample and advances the phase by one output period.
func (c *channelState[F]) emit() F {
	y := c.interpolate()
	c.phase += c.ratio
	return y
}
