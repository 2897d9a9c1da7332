package spv

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

//ReadNpy reads a two dimensional float64 npy file into a dense matrix.
func ReadNpy(fileName string) (denseMat *mat.Dense, err error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer closeFile(f, &err)

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "npy header of %s", fileName)
	}

	denseMat = &mat.Dense{}
	if err = r.Read(denseMat); err != nil {
		return nil, errors.Wrapf(err, "npy data of %s", fileName)
	}
	return denseMat, nil
}

//ReadDenseNpy reads a dense design matrix and compresses it into both views.
func ReadDenseNpy(fileName string) (*Matrix, error) {
	denseMat, err := ReadNpy(fileName)
	if err != nil {
		return nil, err
	}
	return FromDense(denseMat), nil
}

//ReadVector reads a float64 npy array of any shape as a flat vector.
func ReadVector(fileName string) (vec []float64, err error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer closeFile(f, &err)

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "npy header of %s", fileName)
	}
	if err = r.Read(&vec); err != nil {
		return nil, errors.Wrapf(err, "npy data of %s", fileName)
	}
	return vec, nil
}

//readIndices reads an integer npy array written by scipy, which uses int32 or
//int64 depending on the matrix size.
func readIndices(fileName string) (indices []int, err error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer closeFile(f, &err)

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "npy header of %s", fileName)
	}

	switch dtype := r.Header.Descr.Type; dtype {
	case "<i4", "|i4":
		var raw []int32
		if err = r.Read(&raw); err != nil {
			return nil, errors.Wrapf(err, "npy data of %s", fileName)
		}
		indices = make([]int, len(raw))
		for k, v := range raw {
			indices[k] = int(v)
		}
	case "<i8", "|i8":
		var raw []int64
		if err = r.Read(&raw); err != nil {
			return nil, errors.Wrapf(err, "npy data of %s", fileName)
		}
		indices = make([]int, len(raw))
		for k, v := range raw {
			indices[k] = int(v)
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedDtype, "%s in %s", dtype, fileName)
	}
	return indices, nil
}

//ReadCSRNpy assembles a CSR matrix from the three arrays of a scipy.sparse.csr_matrix
//saved as separate npy files. The number of rows is implied by indptr.
func ReadCSRNpy(dataFile, indicesFile, indptrFile string, nCols int) (*CSR, error) {
	data, err := ReadVector(dataFile)
	if err != nil {
		return nil, err
	}
	indices, err := readIndices(indicesFile)
	if err != nil {
		return nil, err
	}
	indptr, err := readIndices(indptrFile)
	if err != nil {
		return nil, err
	}
	if len(indptr) == 0 {
		return nil, errors.Wrapf(ErrBadShape, "empty indptr in %s", indptrFile)
	}
	return NewCSR(len(indptr)-1, nCols, data, indices, indptr)
}

//WriteVector stores x as a one dimensional float64 npy array.
func WriteVector(fileName string, x []float64) (err error) {
	dst, err := os.Create(fileName)
	if err != nil {
		return errors.WithStack(err)
	}
	defer closeFile(dst, &err)
	return errors.Wrapf(npyio.Write(dst, x), "write %s", fileName)
}

//WriteDense stores a dense matrix as a two dimensional float64 npy array.
func WriteDense(fileName string, m *mat.Dense) (err error) {
	dst, err := os.Create(fileName)
	if err != nil {
		return errors.WithStack(err)
	}
	defer closeFile(dst, &err)
	return errors.Wrapf(npyio.Write(dst, m), "write %s", fileName)
}

func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = errors.WithStack(cerr)
	}
}
