package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/pkg/errors"

	"github.com/tarstars/sparse_erm/golang/sparse_erm/rsl"
	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

// HandleError stops the program on any error, printing the stack recorded by pkg/errors.
func HandleError(err error) {
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func decodeConfig(srcConfig string, out interface{}) {
	file, err := os.Open(srcConfig)
	HandleError(errors.WithStack(err))
	defer func() { HandleError(file.Close()) }()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	HandleError(errors.Wrapf(decoder.Decode(out), "config %s", srcConfig))
}

// MatrixConfig names the design matrix: either a dense npy file or the three arrays of a
// scipy csr_matrix.
type MatrixConfig struct {
	FileNameMatrix  string `json:"filename_matrix"`
	FileNameData    string `json:"filename_data"`
	FileNameIndices string `json:"filename_indices"`
	FileNameIndptr  string `json:"filename_indptr"`
	NFeatures       int    `json:"n_features"`
}

func (mc MatrixConfig) load() *spv.Matrix {
	if mc.FileNameMatrix != "" {
		log.Print("load dense matrix ", mc.FileNameMatrix)
		a, err := spv.ReadDenseNpy(mc.FileNameMatrix)
		HandleError(err)
		return a
	}

	log.Print("load csr matrix ", mc.FileNameData)
	rows, err := spv.ReadCSRNpy(mc.FileNameData, mc.FileNameIndices, mc.FileNameIndptr, mc.NFeatures)
	HandleError(err)
	return spv.NewMatrix(rows)
}

type SolveConfig struct {
	MatrixConfig
	FileNameTarget string `json:"filename_target"`
	FileNameX0     string `json:"filename_x0"`

	Algorithm  string  `json:"algorithm"`
	Loss       string  `json:"loss"`
	HuberDelta float64 `json:"huber_delta"`
	Alpha      float64 `json:"alpha"`
	Beta       float64 `json:"beta"`
	StepSize   float64 `json:"step_size"`
	AutoStep   bool    `json:"auto_step"`
	MaxIter    int     `json:"max_iter"`
	Tol        float64 `json:"tol"`
	Seed       int64   `json:"seed"`
	Workers    int     `json:"workers"`
	Trace      bool    `json:"trace"`
	Verbose    bool    `json:"verbose"`

	FileNameCoefficients string `json:"filename_coefficients"`
	FileNameResult       string `json:"filename_result"`
	FileNameTrace        string `json:"filename_trace"`
	FileNamePrediction   string `json:"filename_prediction"`
}

func newSolveConfig() SolveConfig {
	defaults := rsl.NewDefaultParams()
	return SolveConfig{
		Algorithm: rsl.AlgorithmSAGA,
		Loss:      "squared",
		MaxIter:   defaults.MaxIter,
		Tol:       defaults.Tol,
		Seed:      defaults.Seed,
		Workers:   defaults.Workers,
	}
}

func (sc SolveConfig) params(a *spv.Matrix, loss rsl.Loss) rsl.Params {
	params := rsl.NewDefaultParams()
	params.Alpha = sc.Alpha
	params.Beta = sc.Beta
	params.StepSize = sc.StepSize
	params.MaxIter = sc.MaxIter
	params.Tol = sc.Tol
	params.Seed = sc.Seed
	params.Workers = sc.Workers
	params.Trace = sc.Trace
	params.Verbose = sc.Verbose

	if sc.AutoStep && params.StepSize == 0 {
		switch sc.Algorithm {
		case rsl.AlgorithmBCD:
			params.StepSize = rsl.BCDStepSize(a, loss, sc.Alpha)
		default:
			params.StepSize = rsl.SAGAStepSize(a, loss, sc.Alpha)
		}
		log.Printf("step size %.6e picked from the smoothness bound\n", params.StepSize)
	}
	return params
}

func solve(srcConfig string) {
	solveConfig := newSolveConfig()
	decodeConfig(srcConfig, &solveConfig)

	a := solveConfig.load()
	nSamples, nFeatures := a.Dims()
	log.Printf("design matrix %d x %d, %d nonzeros\n", nSamples, nFeatures, a.Rows.Nnz())

	log.Print("load target ", solveConfig.FileNameTarget)
	b, err := spv.ReadVector(solveConfig.FileNameTarget)
	HandleError(err)

	loss, err := rsl.NewLoss(solveConfig.Loss, solveConfig.HuberDelta)
	HandleError(err)

	params := solveConfig.params(a, loss)
	if solveConfig.FileNameX0 != "" {
		params.X0, err = spv.ReadVector(solveConfig.FileNameX0)
		HandleError(err)
	}

	res, err := rsl.Solve(solveConfig.Algorithm, a, b, loss, params)
	HandleError(err)
	log.Print(res.Message)

	if solveConfig.FileNameCoefficients != "" {
		HandleError(spv.WriteVector(solveConfig.FileNameCoefficients, res.X))
	}
	if solveConfig.FileNameResult != "" {
		HandleError(res.Save(solveConfig.FileNameResult))
	}
	if solveConfig.FileNameTrace != "" {
		HandleError(res.DumpTrace(solveConfig.FileNameTrace))
	}
	if solveConfig.FileNamePrediction != "" {
		HandleError(spv.WriteVector(solveConfig.FileNamePrediction, rsl.Prediction(a, res.X)))
	}
}

type GraphConfig struct {
	MatrixConfig
	MaxRows       int    `json:"max_rows"`
	FigureType    string `json:"figure_type"`
	FileNameGraph string `json:"filename_graph"`
}

func graph(srcConfig string) {
	graphConfig := GraphConfig{MaxRows: 50, FigureType: "svg"}
	decodeConfig(srcConfig, &graphConfig)

	a := graphConfig.load()
	HandleError(a.Rows.RenderIncidence(graphConfig.MaxRows, graphConfig.FigureType, graphConfig.FileNameGraph))
}

type TraceConfig struct {
	FileNameResult string `json:"filename_result"`
	FileNameTrace  string `json:"filename_trace"`
}

func trace(srcConfig string) {
	var traceConfig TraceConfig
	decodeConfig(srcConfig, &traceConfig)

	res, err := rsl.LoadResult(traceConfig.FileNameResult)
	HandleError(err)
	HandleError(res.DumpTrace(traceConfig.FileNameTrace))
}

func main() {
	runMode := flag.String("mode", "solve", "you can select either 'solve', 'graph' or 'trace' modes")
	config := flag.String("config", "sparse_erm_config.json", "a config file for the run of the program")
	memprofile := flag.String("memprofile", "", "write memory profile to `file`")

	flag.Parse()

	run, ok := map[string]func(string){
		"solve": solve,
		"graph": graph,
		"trace": trace,
	}[*runMode]
	if !ok {
		log.Fatalf("unknown mode %q", *runMode)
	}
	run(*config)

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		HandleError(err)
		defer func() { HandleError(f.Close()) }()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}
