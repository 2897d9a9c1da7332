// SPDX-License-Identifier: Apache-2.0

package main

/*
#cgo CFLAGS: -I.
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"io"
	"log"
	"sync"
	"unsafe"

	"github.com/tarstars/sparse_erm/golang/sparse_erm/rsl"
	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

var (
	handleMu   sync.Mutex
	nextHandle uint64 = 1
	results           = make(map[uint64]*rsl.OptimizeResult)

	lastErrorMu sync.Mutex
	lastError   string

	logSilenceOnce sync.Once
)

func setLastError(err error) {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

func getLastError() string {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	return lastError
}

func storeResult(res *rsl.OptimizeResult) uint64 {
	handleMu.Lock()
	defer handleMu.Unlock()
	handle := nextHandle
	results[handle] = res
	nextHandle++
	return handle
}

func fetchResult(handle uint64) (*rsl.OptimizeResult, error) {
	handleMu.Lock()
	defer handleMu.Unlock()
	res, ok := results[handle]
	if !ok {
		return nil, errors.New("invalid result handle")
	}
	return res, nil
}

//export FreeResult
func FreeResult(handle C.ulonglong) {
	handleMu.Lock()
	defer handleMu.Unlock()
	delete(results, uint64(handle))
}

func copyFloatSlice(ptr *C.double, length int) ([]float64, error) {
	if length < 0 {
		return nil, errors.New("negative length")
	}
	if length == 0 {
		return nil, nil
	}
	if ptr == nil {
		return nil, errors.New("null pointer for non-empty slice")
	}
	src := unsafe.Slice((*float64)(unsafe.Pointer(ptr)), length)
	dst := make([]float64, length)
	copy(dst, src)
	return dst, nil
}

func copyIndexSlice(ptr *C.longlong, length int) ([]int, error) {
	if length < 0 {
		return nil, errors.New("negative length")
	}
	if length == 0 {
		return []int{}, nil
	}
	if ptr == nil {
		return nil, errors.New("null pointer for non-empty slice")
	}
	src := unsafe.Slice((*int64)(unsafe.Pointer(ptr)), length)
	dst := make([]int, length)
	for k, v := range src {
		dst[k] = int(v)
	}
	return dst, nil
}

func sliceFromPtr(ptr *C.double, length int) ([]float64, error) {
	if length < 0 {
		return nil, errors.New("negative length")
	}
	if length == 0 {
		return nil, nil
	}
	if ptr == nil {
		return nil, errors.New("null pointer for non-empty slice")
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(ptr)), length), nil
}

// buildMatrix copies a scipy csr_matrix (int64 indices) into both compressed views.
func buildMatrix(dataPtr *C.double, indicesPtr, indptrPtr *C.longlong, rows, cols, nnz C.int) (*spv.Matrix, error) {
	data, err := copyFloatSlice(dataPtr, int(nnz))
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []float64{}
	}
	indices, err := copyIndexSlice(indicesPtr, int(nnz))
	if err != nil {
		return nil, err
	}
	indptr, err := copyIndexSlice(indptrPtr, int(rows)+1)
	if err != nil {
		return nil, err
	}
	csr, err := spv.NewCSR(int(rows), int(cols), data, indices, indptr)
	if err != nil {
		return nil, err
	}
	return spv.NewMatrix(csr), nil
}

var lossNames = map[C.int]string{
	0: "squared",
	1: "logistic",
	2: "huber",
}

func buildLoss(kind C.int, huberDelta C.double) (rsl.Loss, error) {
	name, ok := lossNames[kind]
	if !ok {
		return nil, errors.New("unsupported loss kind")
	}
	return rsl.NewLoss(name, float64(huberDelta))
}

type solveArgs struct {
	dataPtr    *C.double
	indicesPtr *C.longlong
	indptrPtr  *C.longlong
	rows       C.int
	cols       C.int
	nnz        C.int
	targetPtr  *C.double
	x0Ptr      *C.double
	lossKind   C.int
	huberDelta C.double
	params     rsl.Params
}

func runSolve(algorithm string, args solveArgs) C.ulonglong {
	setLastError(nil)
	logSilenceOnce.Do(func() {
		log.SetOutput(io.Discard)
	})

	if args.rows <= 0 || args.cols <= 0 {
		setLastError(errors.New("rows and cols must be positive"))
		return 0
	}

	a, err := buildMatrix(args.dataPtr, args.indicesPtr, args.indptrPtr, args.rows, args.cols, args.nnz)
	if err != nil {
		setLastError(err)
		return 0
	}

	b, err := copyFloatSlice(args.targetPtr, int(args.rows))
	if err != nil {
		setLastError(err)
		return 0
	}

	if args.x0Ptr != nil {
		args.params.X0, err = copyFloatSlice(args.x0Ptr, int(args.cols))
		if err != nil {
			setLastError(err)
			return 0
		}
	}

	loss, err := buildLoss(args.lossKind, args.huberDelta)
	if err != nil {
		setLastError(err)
		return 0
	}

	res, err := rsl.Solve(algorithm, a, b, loss, args.params)
	if err != nil {
		setLastError(err)
		return 0
	}
	return C.ulonglong(storeResult(res))
}

func bridgeParams(alpha, beta, stepSize C.double, maxIter C.int, tol C.double, seed C.longlong, trace C.int) rsl.Params {
	params := rsl.NewDefaultParams()
	params.Alpha = float64(alpha)
	params.Beta = float64(beta)
	params.StepSize = float64(stepSize)
	params.MaxIter = int(maxIter)
	params.Tol = float64(tol)
	params.Seed = int64(seed)
	params.Trace = trace != 0
	return params
}

//export SolveSAGA
func SolveSAGA(
	dataPtr *C.double,
	indicesPtr *C.longlong,
	indptrPtr *C.longlong,
	rows C.int,
	cols C.int,
	nnz C.int,
	targetPtr *C.double,
	x0Ptr *C.double,
	lossKind C.int,
	huberDelta C.double,
	alpha C.double,
	beta C.double,
	stepSize C.double,
	maxIter C.int,
	tol C.double,
	seed C.longlong,
	workers C.int,
	trace C.int,
) C.ulonglong {
	params := bridgeParams(alpha, beta, stepSize, maxIter, tol, seed, trace)
	if workers > 1 {
		params.Workers = int(workers)
	}
	return runSolve(rsl.AlgorithmSAGA, solveArgs{
		dataPtr:    dataPtr,
		indicesPtr: indicesPtr,
		indptrPtr:  indptrPtr,
		rows:       rows,
		cols:       cols,
		nnz:        nnz,
		targetPtr:  targetPtr,
		x0Ptr:      x0Ptr,
		lossKind:   lossKind,
		huberDelta: huberDelta,
		params:     params,
	})
}

//export SolveBCD
func SolveBCD(
	dataPtr *C.double,
	indicesPtr *C.longlong,
	indptrPtr *C.longlong,
	rows C.int,
	cols C.int,
	nnz C.int,
	targetPtr *C.double,
	x0Ptr *C.double,
	lossKind C.int,
	huberDelta C.double,
	alpha C.double,
	beta C.double,
	stepSize C.double,
	maxIter C.int,
	tol C.double,
	seed C.longlong,
	trace C.int,
) C.ulonglong {
	return runSolve(rsl.AlgorithmBCD, solveArgs{
		dataPtr:    dataPtr,
		indicesPtr: indicesPtr,
		indptrPtr:  indptrPtr,
		rows:       rows,
		cols:       cols,
		nnz:        nnz,
		targetPtr:  targetPtr,
		x0Ptr:      x0Ptr,
		lossKind:   lossKind,
		huberDelta: huberDelta,
		params:     bridgeParams(alpha, beta, stepSize, maxIter, tol, seed, trace),
	})
}

//export ResultCoefficients
func ResultCoefficients(handle C.ulonglong, outputPtr *C.double, length C.int) C.int {
	setLastError(nil)
	res, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	if int(length) != len(res.X) {
		setLastError(errors.New("output length does not match the number of features"))
		return 2
	}
	outSlice, err := sliceFromPtr(outputPtr, int(length))
	if err != nil {
		setLastError(err)
		return 3
	}
	copy(outSlice, res.X)
	return 0
}

// certificate is only meaningful when hasCertificate is set to 1.
//
//export ResultInfo
func ResultInfo(
	handle C.ulonglong,
	nit *C.int,
	success *C.int,
	hasCertificate *C.int,
	certificate *C.double,
	stepSize *C.double,
	traceLength *C.int,
) C.int {
	setLastError(nil)
	res, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	if nit == nil || success == nil || hasCertificate == nil || certificate == nil || stepSize == nil || traceLength == nil {
		setLastError(errors.New("null output pointer"))
		return 2
	}

	*nit = C.int(res.Nit)
	*success = 0
	if res.Success {
		*success = 1
	}
	*hasCertificate = 0
	*certificate = 0
	if res.Certificate != nil {
		*hasCertificate = 1
		*certificate = C.double(*res.Certificate)
	}
	*stepSize = C.double(res.StepSize)
	*traceLength = C.int(len(res.TraceFunc))
	return 0
}

//export ResultTrace
func ResultTrace(handle C.ulonglong, funcPtr, timePtr *C.double, length C.int) C.int {
	setLastError(nil)
	res, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	if len(res.TraceFunc) == 0 {
		setLastError(rsl.ErrNoTrace)
		return 2
	}
	if int(length) != len(res.TraceFunc) {
		setLastError(errors.New("output length does not match the trace length"))
		return 3
	}
	funcSlice, err := sliceFromPtr(funcPtr, int(length))
	if err != nil {
		setLastError(err)
		return 4
	}
	timeSlice, err := sliceFromPtr(timePtr, int(length))
	if err != nil {
		setLastError(err)
		return 5
	}
	copy(funcSlice, res.TraceFunc)
	copy(timeSlice, res.TraceTime)
	return 0
}

//export ResultMessage
func ResultMessage(handle C.ulonglong) *C.char {
	setLastError(nil)
	res, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return nil
	}
	return C.CString(res.Message)
}

//export SaveResult
func SaveResult(handle C.ulonglong, path *C.char) C.int {
	setLastError(nil)
	res, err := fetchResult(uint64(handle))
	if err != nil {
		setLastError(err)
		return 1
	}
	if err := res.Save(C.GoString(path)); err != nil {
		setLastError(err)
		return 2
	}
	return 0
}

//export RenderIncidence
func RenderIncidence(
	dataPtr *C.double,
	indicesPtr *C.longlong,
	indptrPtr *C.longlong,
	rows C.int,
	cols C.int,
	nnz C.int,
	maxRows C.int,
	figureType *C.char,
	path *C.char,
) C.int {
	setLastError(nil)
	a, err := buildMatrix(dataPtr, indicesPtr, indptrPtr, rows, cols, nnz)
	if err != nil {
		setLastError(err)
		return 1
	}
	goFigureType := C.GoString(figureType)
	if goFigureType == "" {
		goFigureType = "svg"
	}
	if err := a.Rows.RenderIncidence(int(maxRows), goFigureType, C.GoString(path)); err != nil {
		setLastError(err)
		return 2
	}
	return 0
}

//export GetLastError
func GetLastError() *C.char {
	errStr := getLastError()
	if errStr == "" {
		return nil
	}
	return C.CString(errStr)
}

//export FreeCString
func FreeCString(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

func main() {}
