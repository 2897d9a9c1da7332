package rsl

import "fmt"

// OptimizeResult is the outcome of one solve.
type OptimizeResult struct {
	X         []float64 `json:"x"`
	Success   bool      `json:"success"`
	Nit       int       `json:"nit"`
	Message   string    `json:"message"`
	TraceFunc []float64 `json:"trace_func,omitempty"`
	TraceTime []float64 `json:"trace_time,omitempty"`
	// Certificate is the last convergence measure the engine evaluated, nil when the
	// engine does not evaluate one.
	Certificate *float64 `json:"certificate,omitempty"`
	// StepSize is the step the engine finished with.
	StepSize float64 `json:"step_size"`

	trace *Trace
}

// Trace returns the per-epoch recorder, nil when tracing was off.
func (res *OptimizeResult) Trace() *Trace {
	return res.trace
}

// attachTrace evaluates the objective on every snapshot once the engine is done.
func (res *OptimizeResult) attachTrace(trace *Trace, evaluate func(x []float64) float64) {
	if trace == nil {
		return
	}
	res.trace = trace
	res.TraceFunc = trace.Evaluate(evaluate)
	res.TraceTime = trace.Times()
}

func convergedMessage(tol float64, epochs int) string {
	return fmt.Sprintf("Optimization terminated successfully: coefficient change below %g after %d epochs.", tol, epochs)
}

func exhaustedMessage(maxIter int, tol, change float64) string {
	return fmt.Sprintf("Maximum number of epochs (%d) reached; last coefficient change %.3e is not below %g.", maxIter, change, tol)
}
