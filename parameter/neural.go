package parameter

// Neural Scorer - fixed topology. Persistence documents encode these sizes;
// changing them invalidates every saved scorer.
const (
	NeuralInputSize  = 20
	NeuralHiddenSize = 16
	NeuralOutputSize = 8
)

// Neural Scorer - numeric ranges
const (
	// NeuralInitRange: weights and biases initialize uniformly in [-r, r]
	NeuralInitRange = 1.0

	// NeuralMutationRange: mutation adds a value uniform in [-r, r]
	NeuralMutationRange = 0.5

	// NeuralSigmoidClamp bounds the squashing argument before exponentiation
	NeuralSigmoidClamp = 500.0
)
