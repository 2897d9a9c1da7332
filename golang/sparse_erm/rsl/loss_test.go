package rsl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLossDerivatives(t *testing.T) {
	const h = 1e-6
	losses := map[string]Loss{
		"squared":  SquaredLoss{},
		"logistic": LogLoss{},
		"huber":    HuberLoss{Delta: 0.7},
	}
	points := [][2]float64{{0.3, 1}, {-2, 1}, {1.5, -1}, {4, -1}, {-0.2, 0.5}}

	for name, loss := range losses {
		for _, pt := range points {
			p, b := pt[0], pt[1]
			numeric := (loss.Value(p+h, b) - loss.Value(p-h, b)) / (2 * h)
			assert.InDelta(t, numeric, loss.Deriv(p, b), 1e-5, "%s at p=%g b=%g", name, p, b)
		}
	}
}

func TestLossValues(t *testing.T) {
	assert.Equal(t, 2.0, SquaredLoss{}.Value(3, 1))
	assert.InDelta(t, math.Log(2), LogLoss{}.Value(0, 1), 1e-15)
	assert.InDelta(t, 1000, LogLoss{}.Value(-1000, 1), 1e-9)
	assert.False(t, math.IsNaN(LogLoss{}.Deriv(1000, -1)))
	assert.InDelta(t, 1, LogLoss{}.Deriv(1000, -1), 1e-12)

	huber := HuberLoss{Delta: 1}
	assert.Equal(t, 0.125, huber.Value(0.5, 0))
	assert.Equal(t, 2.5, huber.Value(-3, 0))
	assert.Equal(t, -1.0, huber.Deriv(-3, 0))
}

func TestNewLoss(t *testing.T) {
	loss, err := NewLoss("mse", 0)
	require.NoError(t, err)
	assert.Equal(t, SquaredLoss{}, loss)

	loss, err = NewLoss("logistic", 0)
	require.NoError(t, err)
	assert.Equal(t, LogLoss{}, loss)

	loss, err = NewLoss("huber", 2)
	require.NoError(t, err)
	assert.Equal(t, HuberLoss{Delta: 2}, loss)

	_, err = NewLoss("huber", 0)
	assert.Error(t, err)

	_, err = NewLoss("hinge", 0)
	assert.ErrorIs(t, err, ErrUnknownLoss)
}

func TestSoftThreshold(t *testing.T) {
	penalty := L1Penalty{Beta: 0.5}
	const step = 2.0

	for _, v := range []float64{-1, -0.999, -0.3, 0, 0.5, 1} {
		assert.Equal(t, 0.0, penalty.Prox(v, step), "v=%g", v)
	}
	assert.Equal(t, 0.5, penalty.Prox(1.5, step))
	assert.Equal(t, -2.0, penalty.Prox(-3, step))
	assert.Equal(t, 1.5, penalty.Value([]float64{1, -2, 0}))

	assert.Equal(t, -3.25, ZeroPenalty{}.Prox(-3.25, step))
	assert.Equal(t, 0.0, ZeroPenalty{}.Value([]float64{1, 2}))
}

func TestNewPenalty(t *testing.T) {
	penalty, err := NewPenalty(0)
	require.NoError(t, err)
	assert.Equal(t, ZeroPenalty{}, penalty)

	penalty, err = NewPenalty(0.25)
	require.NoError(t, err)
	assert.Equal(t, L1Penalty{Beta: 0.25}, penalty)

	_, err = NewPenalty(-1)
	assert.ErrorIs(t, err, ErrNegativePenalty)
}

func TestObjective(t *testing.T) {
	a, b := smallProblem()
	x := []float64{1, -1, 0.5}

	var data float64
	pred := Prediction(a, x)
	for i := range b {
		r := pred[i] - b[i]
		data += 0.5 * r * r
	}
	want := data/5 + 0.5*0.2*(1+1+0.25) + 0.1*2.5

	got := Objective(a.Rows, b, x, SquaredLoss{}, 0.2, L1Penalty{Beta: 0.1})
	assert.InDelta(t, want, got, 1e-12)

	assert.InDelta(t, data/5, Objective(a.Rows, b, x, SquaredLoss{}, 0, nil), 1e-12)
}

func TestStepSizes(t *testing.T) {
	a, _ := ridgeProblem()

	assert.InDelta(t, 1/(3*9.1), SAGAStepSize(a, SquaredLoss{}, 0.1), 1e-15)
	assert.InDelta(t, 1/(11.0/6+0.1), BCDStepSize(a, SquaredLoss{}, 0.1), 1e-15)
	assert.InDelta(t, 1/(3*(0.25*9)), SAGAStepSize(a, LogLoss{}, 0), 1e-15)

	assert.Equal(t, 1.0, SAGAStepSize(a, zeroLoss{}, 0))
	assert.Equal(t, 1.0, BCDStepSize(a, zeroLoss{}, 0))
}
