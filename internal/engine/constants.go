package engine

// Channel and stride limits
const (
	// MaxChannels is the fixed capacity of an Engine's channel array.
	MaxChannels = 16

	minChannels = 1

	// Strides are element distances inside one shared interleaved buffer.
	minStride = 1
	maxStride = 1 << 16
)

// Cubic (Catmull-Rom) interpolation constants
const (
	// Cubic interpolation uses a 4-point window (x-1, x0, x1, x2).
	cubicInterpolationPoints = 4

	// Priming reads x0, x1 and x2; x-1 is seeded with zero.
	primeSamples = 3

	// Catmull-Rom coefficient factors.
	// Formula: y = ((a*p + b)*p + c)*p + x0
	//   a = (3*(x0 - x1) - x-1 + x2) / 2
	//   b = 2*x1 + x-1 - (5*x0 + x2) / 2
	//   c = (x1 - x-1) / 2
	catmullThree = 3
	catmullTwo   = 2
	catmullFive  = 5
	catmullHalf  = 2 // divisor
)

// Ratio limits (input rate / output rate)
const (
	minRatio = 1.0 / 256.0 // 256x upsampling
	maxRatio = 256.0       // 256x downsampling
)
