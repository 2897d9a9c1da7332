package rsl

import (
	"encoding/json"
	"log"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

// Save writes the result as indented JSON.
func (res *OptimizeResult) Save(filename string) (err error) {
	dest, err := os.Create(filename)
	if err != nil {
		log.Print("can't open file ", filename, " to write")
		return errors.WithStack(err)
	}
	defer func() {
		if cerr := dest.Close(); cerr != nil && err == nil {
			err = errors.WithStack(cerr)
		}
	}()

	resultByteRepr, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = dest.Write(resultByteRepr)
	return errors.WithStack(err)
}

// LoadResult reads a result written by Save. The coefficient snapshots are not part of
// the file, so Trace() of the loaded result is nil while TraceFunc and TraceTime survive.
func LoadResult(filename string) (*OptimizeResult, error) {
	source, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer source.Close()

	var res OptimizeResult
	if err := json.NewDecoder(source).Decode(&res); err != nil {
		return nil, errors.Wrapf(err, "decode %s", filename)
	}
	return &res, nil
}

// TraceMatrix returns the trace as an epochs × 2 matrix of (elapsed seconds, objective).
func (res *OptimizeResult) TraceMatrix() (*mat.Dense, error) {
	n := len(res.TraceFunc)
	if n == 0 {
		return nil, ErrNoTrace
	}
	if len(res.TraceTime) != n {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%d trace times for %d values", len(res.TraceTime), n)
	}
	curves := mat.NewDense(n, 2, nil)
	curves.SetCol(0, res.TraceTime)
	curves.SetCol(1, res.TraceFunc)
	return curves, nil
}

// DumpTrace stores TraceMatrix as a npy file for plotting elsewhere.
func (res *OptimizeResult) DumpTrace(filename string) error {
	curves, err := res.TraceMatrix()
	if err != nil {
		return err
	}
	return spv.WriteDense(filename, curves)
}
