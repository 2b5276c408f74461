package neural

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/chimera-mind/parameter"
)

// Network is a minimal feed-forward scorer: one hidden layer, logistic
// activation, no training machinery. Weight changes happen only through
// Mutate or direct replacement during load.
type Network struct {
	InputSize  int
	HiddenSize int
	OutputSize int

	// Row-major: WeightsInHidden[input][hidden], WeightsHiddenOut[hidden][output]
	WeightsInHidden  [][]float64
	WeightsHiddenOut [][]float64
	BiasHidden       []float64
	BiasOut          []float64

	rng *rand.Rand
}

// New creates a network with the fixed 20-16-8 topology and weights
// initialized uniformly in [-1, 1]
func New(rng *rand.Rand) *Network {
	return NewSized(parameter.NeuralInputSize, parameter.NeuralHiddenSize, parameter.NeuralOutputSize, rng)
}

// NewSized creates a network with explicit layer sizes. The rng drives
// initialization and all later mutation; a nil rng gets a PCG-seeded one.
func NewSized(inputSize, hiddenSize, outputSize int, rng *rand.Rand) *Network {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	n := &Network{
		InputSize:        inputSize,
		HiddenSize:       hiddenSize,
		OutputSize:       outputSize,
		WeightsInHidden:  make([][]float64, inputSize),
		WeightsHiddenOut: make([][]float64, hiddenSize),
		BiasHidden:       make([]float64, hiddenSize),
		BiasOut:          make([]float64, outputSize),
		rng:              rng,
	}

	uniform := func() float64 {
		return rng.Float64()*2*parameter.NeuralInitRange - parameter.NeuralInitRange
	}

	for i := range n.WeightsInHidden {
		n.WeightsInHidden[i] = make([]float64, hiddenSize)
		for j := range n.WeightsInHidden[i] {
			n.WeightsInHidden[i][j] = uniform()
		}
	}
	for i := range n.WeightsHiddenOut {
		n.WeightsHiddenOut[i] = make([]float64, outputSize)
		for j := range n.WeightsHiddenOut[i] {
			n.WeightsHiddenOut[i][j] = uniform()
		}
	}
	for i := range n.BiasHidden {
		n.BiasHidden[i] = uniform()
	}
	for i := range n.BiasOut {
		n.BiasOut[i] = uniform()
	}

	return n
}

// sigmoid squashes with the argument clamped to the documented range.
// The clamp must stay bit-for-bit compatible with saved scorers; removing
// it changes outputs for saturated inputs.
func sigmoid(x float64) float64 {
	if x > parameter.NeuralSigmoidClamp {
		x = parameter.NeuralSigmoidClamp
	} else if x < -parameter.NeuralSigmoidClamp {
		x = -parameter.NeuralSigmoidClamp
	}
	return 1.0 / (1.0 + math.Exp(-x))
}

// Forward computes the output preference vector for one input vector.
// Pure: identical weights and inputs produce identical outputs.
func (n *Network) Forward(inputs []float64) ([]float64, error) {
	if len(inputs) != n.InputSize {
		return nil, fmt.Errorf("neural: input size %d, want %d", len(inputs), n.InputSize)
	}

	hidden := make([]float64, n.HiddenSize)
	for i := 0; i < n.HiddenSize; i++ {
		sum := n.BiasHidden[i]
		for j := 0; j < n.InputSize; j++ {
			sum += inputs[j] * n.WeightsInHidden[j][i]
		}
		hidden[i] = sigmoid(sum)
	}

	outputs := make([]float64, n.OutputSize)
	for i := 0; i < n.OutputSize; i++ {
		sum := n.BiasOut[i]
		for j := 0; j < n.HiddenSize; j++ {
			sum += hidden[j] * n.WeightsHiddenOut[j][i]
		}
		outputs[i] = sigmoid(sum)
	}

	return outputs, nil
}

// Mutate perturbs each weight and bias independently with probability rate,
// adding a value uniform in [-0.5, 0.5]
func (n *Network) Mutate(rate float64) {
	perturb := func() float64 {
		return n.rng.Float64()*2*parameter.NeuralMutationRange - parameter.NeuralMutationRange
	}

	for i := range n.WeightsInHidden {
		for j := range n.WeightsInHidden[i] {
			if n.rng.Float64() < rate {
				n.WeightsInHidden[i][j] += perturb()
			}
		}
	}
	for i := range n.WeightsHiddenOut {
		for j := range n.WeightsHiddenOut[i] {
			if n.rng.Float64() < rate {
				n.WeightsHiddenOut[i][j] += perturb()
			}
		}
	}
	for i := range n.BiasHidden {
		if n.rng.Float64() < rate {
			n.BiasHidden[i] += perturb()
		}
	}
	for i := range n.BiasOut {
		if n.rng.Float64() < rate {
			n.BiasOut[i] += perturb()
		}
	}
}

// Clone returns a deep copy sharing the rng
func (n *Network) Clone() *Network {
	c := &Network{
		InputSize:        n.InputSize,
		HiddenSize:       n.HiddenSize,
		OutputSize:       n.OutputSize,
		WeightsInHidden:  make([][]float64, len(n.WeightsInHidden)),
		WeightsHiddenOut: make([][]float64, len(n.WeightsHiddenOut)),
		BiasHidden:       append([]float64(nil), n.BiasHidden...),
		BiasOut:          append([]float64(nil), n.BiasOut...),
		rng:              n.rng,
	}
	for i, row := range n.WeightsInHidden {
		c.WeightsInHidden[i] = append([]float64(nil), row...)
	}
	for i, row := range n.WeightsHiddenOut {
		c.WeightsHiddenOut[i] = append([]float64(nil), row...)
	}
	return c
}
