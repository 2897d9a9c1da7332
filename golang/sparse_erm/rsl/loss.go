package rsl

import (
	"math"

	"github.com/pkg/errors"
)

// Loss is a smooth per-sample loss of a linear prediction p = A_i·x and a label b.
// Deriv is called once per visited sample inside the engines' inner loops and must be
// a pure function.
type Loss interface {
	Value(p, b float64) float64
	Deriv(p, b float64) float64
	// Curvature bounds the second derivative in p; step-size helpers use it.
	Curvature() float64
}

// SquaredLoss is 0.5*(p-b)².
type SquaredLoss struct{}

func (SquaredLoss) Value(p, b float64) float64 {
	r := p - b
	return 0.5 * r * r
}

func (SquaredLoss) Deriv(p, b float64) float64 {
	return p - b
}

func (SquaredLoss) Curvature() float64 {
	return 1
}

// LogLoss is the logistic loss log(1+exp(-b*p)) for labels in {-1, +1}.
type LogLoss struct{}

func (LogLoss) Value(p, b float64) float64 {
	z := b * p
	if z > 0 {
		return math.Log1p(math.Exp(-z))
	}
	return -z + math.Log1p(math.Exp(z))
}

func (LogLoss) Deriv(p, b float64) float64 {
	z := b * p
	if z > 0 {
		e := math.Exp(-z)
		return -b * e / (1 + e)
	}
	return -b / (1 + math.Exp(z))
}

func (LogLoss) Curvature() float64 {
	return 0.25
}

// HuberLoss is quadratic for residuals within Delta and linear beyond.
type HuberLoss struct {
	Delta float64
}

func (h HuberLoss) Value(p, b float64) float64 {
	r := math.Abs(p - b)
	if r <= h.Delta {
		return 0.5 * r * r
	}
	return h.Delta * (r - 0.5*h.Delta)
}

func (h HuberLoss) Deriv(p, b float64) float64 {
	r := p - b
	switch {
	case r > h.Delta:
		return h.Delta
	case r < -h.Delta:
		return -h.Delta
	}
	return r
}

func (HuberLoss) Curvature() float64 {
	return 1
}

// NewLoss maps a configuration name to a loss. delta is only used by "huber".
func NewLoss(name string, delta float64) (Loss, error) {
	switch name {
	case "squared", "mse":
		return SquaredLoss{}, nil
	case "logistic", "logloss":
		return LogLoss{}, nil
	case "huber":
		if !(delta > 0) {
			return nil, errors.Errorf("rsl: huber delta must be positive, got %g", delta)
		}
		return HuberLoss{Delta: delta}, nil
	}
	return nil, errors.Wrapf(ErrUnknownLoss, "%q", name)
}
