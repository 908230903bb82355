package pipeline

// Ring adapter sizing
const (
	minBlockSize   = 1
	minUpsample    = 1.0
	defaultUpRatio = 1.0

	// One producer block may yield a few extra outputs from phase carried
	// over from the previous block.
	ringHeadroom = 4

	// The adapter works on planar per-channel blocks.
	planarStride = 1

	// Priming needs three samples in one block-form call; shorter pushes
	// into an unprimed channel are held back until enough arrive.
	primeWindow = 3
)
