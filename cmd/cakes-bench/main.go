// Command cakes-bench builds a tree over a dataset and benchmarks the
// search engines against it, selecting the fastest within a time budget
// and reporting distance distributions over a larger measured run.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Snider/cakes"
	"github.com/Snider/cakes/internal/dataset"
)

// ann is the annotation type attached to every cluster; the harness has
// no use for per-cluster metadata beyond what Cluster already carries.
type ann = struct{}

// config holds everything the harness needs, loadable from a YAML file
// in the input directory and overridable by flags.
type config struct {
	K             int    `yaml:"k"`
	Q             int    `yaml:"q"`
	SelectBudget  string `yaml:"selectBudget"`
	MeasureBudget string `yaml:"measureBudget"`
	InputDir      string `yaml:"inputDir"`
	OutputDir     string `yaml:"outputDir"`
	LogDir        string `yaml:"logDir"`
	Seed          int64  `yaml:"seed"`
	Dataset       string `yaml:"dataset"` // uniform | grid | file
	DatasetFile   string `yaml:"datasetFile"`
	N             int    `yaml:"n"`
	Dim           int    `yaml:"dim"`
	Metric        string `yaml:"metric"` // euclidean | manhattan | chebyshev | cosine
	Workers       int    `yaml:"workers"`
}

func defaultConfig() config {
	return config{
		K:             10,
		Q:             20,
		SelectBudget:  "500ms",
		MeasureBudget: "2s",
		Dataset:       "uniform",
		N:             1000,
		Dim:           10,
		Metric:        "euclidean",
		Seed:          1,
	}
}

var (
	cfg        = defaultConfig()
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cakes-bench",
	Short: "Build a cakes tree and benchmark its search engines",
	RunE:  run,
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVar(&cfg.K, "k", cfg.K, "number of neighbors to request")
	flags.IntVar(&cfg.Q, "q", cfg.Q, "number of queries sampled during engine selection")
	flags.StringVar(&cfg.SelectBudget, "select-budget", cfg.SelectBudget, "wall-clock budget for engine selection (Go duration)")
	flags.StringVar(&cfg.MeasureBudget, "measure-budget", cfg.MeasureBudget, "wall-clock budget for the measured run (Go duration)")
	flags.StringVar(&cfg.InputDir, "input", cfg.InputDir, "directory containing a config.yaml and/or a dataset file")
	flags.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "directory to write the benchmark report to (stdout if empty)")
	flags.StringVar(&cfg.LogDir, "log", cfg.LogDir, "directory to write a run log to (stderr if empty)")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for synthetic dataset generation")
	flags.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "uniform, grid, or file")
	flags.StringVar(&cfg.DatasetFile, "dataset-file", cfg.DatasetFile, "delimited dataset file (when --dataset=file)")
	flags.IntVar(&cfg.N, "n", cfg.N, "number of synthetic points (uniform)")
	flags.IntVar(&cfg.Dim, "dim", cfg.Dim, "dimensionality of synthetic points")
	flags.StringVar(&cfg.Metric, "metric", cfg.Metric, "euclidean, manhattan, chebyshev, or cosine")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "worker count for parallel engines (0 = GOMAXPROCS)")
	flags.StringVarP(&configPath, "config", "c", "", "optional YAML config file, overridden by any flag explicitly set")
}

func run(cmd *cobra.Command, _ []string) error {
	if configPath == "" && cfg.InputDir != "" {
		if candidate := filepath.Join(cfg.InputDir, "config.yaml"); fileExists(candidate) {
			configPath = candidate
		}
	}
	if configPath != "" {
		if err := loadYAMLOver(configPath, cmd); err != nil {
			return err
		}
	}

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return fmt.Errorf("cakes-bench: creating log dir: %w", err)
		}
		f, err := os.Create(filepath.Join(cfg.LogDir, "run.log"))
		if err != nil {
			return fmt.Errorf("cakes-bench: creating log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	selectBudget, err := time.ParseDuration(cfg.SelectBudget)
	if err != nil {
		return fmt.Errorf("cakes-bench: --select-budget: %w", err)
	}
	measureBudget, err := time.ParseDuration(cfg.MeasureBudget)
	if err != nil {
		return fmt.Errorf("cakes-bench: --measure-budget: %w", err)
	}

	records, err := loadDataset()
	if err != nil {
		return err
	}
	dim, err := dataset.Dim(records)
	if err != nil {
		return fmt.Errorf("cakes-bench: %w", err)
	}
	log.Printf("loaded %d records (dim=%d)", len(records), dim)

	metric, err := pickMetric(cfg.Metric)
	if err != nil {
		return err
	}

	built := buildItems(records)

	rt := cakes.NewRuntime(cfg.Workers)
	buildStart := time.Now()
	tree, err := cakes.ParBuild(rt, built, metric, cakes.DefaultStrategy[float64, ann](), annotate)
	if err != nil {
		return fmt.Errorf("cakes-bench: build: %w", err)
	}
	log.Printf("built tree over %d items in %s", tree.Len(), time.Since(buildStart))

	analytics := cakes.NewTreeAnalytics()
	analytics.RecordBuild()

	lo, hi := dataset.Bounds(records)
	loMid, hiMid := midpoint(lo), midpoint(hi)
	selectQueries := dataset.RandomQueries(cfg.Q, dim, loMid, hiMid, cfg.Seed+1)

	chosen, err := selectEngine(rt, tree, selectQueries, cfg.K, selectBudget)
	if err != nil {
		return err
	}
	log.Printf("selected engine %q", chosen)

	measureQueries := dataset.RandomQueries(maxInt(cfg.Q*5, 1), dim, loMid, hiMid, cfg.Seed+2)
	measureStart := time.Now()
	var allHits [][]cakes.Hit[float64]
	for rounds := 0; time.Since(measureStart) < measureBudget; rounds++ {
		batchStart := time.Now()
		allHits = cakes.ParBatchSearch(rt, measureQueries, func(q []float64) []cakes.Hit[float64] {
			return runEngine(chosen, rt, tree, q, cfg.K)
		})
		analytics.RecordSearch(time.Since(batchStart))
		if rounds == 0 && time.Since(batchStart) > measureBudget {
			log.Printf("a single measured batch (%s) exceeds the %s measure budget; reporting it anyway", time.Since(batchStart), measureBudget)
			break
		}
	}

	report := buildReport(chosen, tree, allHits, analytics)
	return emitReport(report)
}

func midpoint(bounds []float64) float64 {
	if len(bounds) == 0 {
		return 0
	}
	var sum float64
	for _, v := range bounds {
		sum += v
	}
	return sum / float64(len(bounds))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadYAMLOver(path string, cmd *cobra.Command) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cakes-bench: reading config: %w", err)
	}
	fileCfg := defaultConfig()
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("cakes-bench: parsing config: %w", err)
	}

	flags := cmd.Flags()
	merge := func(name string, dst *int, src int) {
		if !flags.Changed(name) {
			*dst = src
		}
	}
	mergeStr := func(name string, dst *string, src string) {
		if !flags.Changed(name) {
			*dst = src
		}
	}

	merge("k", &cfg.K, fileCfg.K)
	merge("q", &cfg.Q, fileCfg.Q)
	mergeStr("select-budget", &cfg.SelectBudget, fileCfg.SelectBudget)
	mergeStr("measure-budget", &cfg.MeasureBudget, fileCfg.MeasureBudget)
	mergeStr("output", &cfg.OutputDir, fileCfg.OutputDir)
	mergeStr("log", &cfg.LogDir, fileCfg.LogDir)
	merge("n", &cfg.N, fileCfg.N)
	merge("dim", &cfg.Dim, fileCfg.Dim)
	mergeStr("metric", &cfg.Metric, fileCfg.Metric)
	mergeStr("dataset", &cfg.Dataset, fileCfg.Dataset)
	mergeStr("dataset-file", &cfg.DatasetFile, fileCfg.DatasetFile)
	if !flags.Changed("seed") {
		cfg.Seed = fileCfg.Seed
	}
	if !flags.Changed("workers") {
		cfg.Workers = fileCfg.Workers
	}
	return nil
}

func loadDataset() ([]dataset.Record, error) {
	switch cfg.Dataset {
	case "uniform":
		return dataset.Uniform(cfg.N, cfg.Dim, -1, 1, cfg.Seed), nil
	case "grid":
		side := 1
		for side*side < cfg.N {
			side++
		}
		return dataset.Grid(side, 2), nil
	case "file":
		if cfg.DatasetFile == "" {
			return nil, fmt.Errorf("cakes-bench: --dataset=file requires --dataset-file")
		}
		path := cfg.DatasetFile
		if !filepath.IsAbs(path) && cfg.InputDir != "" {
			path = filepath.Join(cfg.InputDir, path)
		}
		return dataset.ReadDelimited(path, ",")
	default:
		return nil, fmt.Errorf("cakes-bench: unknown --dataset %q", cfg.Dataset)
	}
}

func pickMetric(name string) (cakes.Metric[[]float64, float64], error) {
	switch name {
	case "euclidean":
		return cakes.Euclidean, nil
	case "manhattan":
		return cakes.Manhattan, nil
	case "chebyshev":
		return cakes.Chebyshev, nil
	case "cosine":
		return cakes.Cosine, nil
	default:
		return nil, fmt.Errorf("cakes-bench: unknown --metric %q", name)
	}
}

func annotate(*cakes.Cluster[float64, ann]) ann { return ann{} }

func buildItems(records []dataset.Record) []cakes.Item[string, []float64] {
	items := make([]cakes.Item[string, []float64], len(records))
	for i, r := range records {
		items[i] = cakes.Item[string, []float64]{ID: r.ID, Value: r.Vector}
	}
	return items
}

// engineNames lists every search engine selectEngine chooses among, in the
// order they are tried when two finish within the same budget window.
var engineNames = []string{"dfs", "bfs", "rrnn", "chess-as-knn"}

func runEngine(name string, rt *cakes.Runtime, tree *cakes.Tree[string, []float64, float64, ann], query []float64, k int) []cakes.Hit[float64] {
	switch name {
	case "dfs":
		return cakes.ParKnnDfs(rt, tree, query, k)
	case "bfs":
		return cakes.ParKnnBfs(rt, tree, query, k)
	case "rrnn":
		return cakes.ParKnnRrnn(rt, tree, query, k)
	case "chess-as-knn":
		// RnnChess answers ranged queries; reuse it for knn selection by
		// searching out to the root radius. The hits are not truncated to
		// k, so this engine returns every item within that radius.
		return cakes.ParRnnChess(rt, tree, query, tree.Root().Radius)
	default:
		return cakes.ParLinear(rt, tree, query, k)
	}
}

// selectEngine runs every candidate engine over queries and returns the
// name of the fastest one to finish all of them within budget. If none
// finishes within budget, the fastest overall is returned anyway.
func selectEngine(rt *cakes.Runtime, tree *cakes.Tree[string, []float64, float64, ann], queries [][]float64, k int, budget time.Duration) (string, error) {
	if len(queries) == 0 {
		return "", fmt.Errorf("cakes-bench: no selection queries (check --q and --dim)")
	}

	best := ""
	var bestElapsed time.Duration
	for _, name := range engineNames {
		start := time.Now()
		for _, q := range queries {
			runEngine(name, rt, tree, q, k)
		}
		elapsed := time.Since(start)
		log.Printf("engine %-14s took %s over %d queries", name, elapsed, len(queries))
		if best == "" || elapsed < bestElapsed {
			best = name
			bestElapsed = elapsed
		}
	}
	if bestElapsed > budget {
		log.Printf("no engine finished within the %s selection budget; using the fastest observed (%s, %s)", budget, best, bestElapsed)
	}
	return best, nil
}

type benchmarkReport struct {
	RunID      string                    `json:"runId"`
	Engine     string                    `json:"engine"`
	K          int                       `json:"k"`
	TreeShape  cakes.TreeShapeStats      `json:"treeShape"`
	Distances  cakes.DistributionStats   `json:"distances"`
	Analytics  cakes.TreeAnalyticsSnapshot `json:"analytics"`
	ComputedAt time.Time                 `json:"computedAt"`
}

func buildReport(engine string, tree *cakes.Tree[string, []float64, float64, ann], hits [][]cakes.Hit[float64], analytics *cakes.TreeAnalytics) benchmarkReport {
	var distances []float64
	for _, batch := range hits {
		for _, h := range batch {
			distances = append(distances, h.Distance)
		}
	}
	return benchmarkReport{
		RunID:      uuid.NewString(),
		Engine:     engine,
		K:          cfg.K,
		TreeShape:  cakes.ComputeTreeShapeStats(tree),
		Distances:  cakes.ComputeDistributionStats(distances),
		Analytics:  analytics.Snapshot(),
		ComputedAt: time.Now(),
	}
}

func emitReport(report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("cakes-bench: marshaling report: %w", err)
	}
	if cfg.OutputDir == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("cakes-bench: creating output dir: %w", err)
	}
	path := filepath.Join(cfg.OutputDir, report.RunID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cakes-bench: writing report: %w", err)
	}
	log.Printf("wrote report to %s", path)
	return nil
}
