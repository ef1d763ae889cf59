package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"analyzer-training/internal/config"
	"analyzer-training/internal/dataset/infrastructure/filestore"
	pipeline "analyzer-training/internal/pipeline/application"
	"analyzer-training/internal/signal"
	"analyzer-training/internal/telemetry/infrastructure/memory"
)

type options struct {
	rows     int
	seed     uint64
	fraction float64
	window   int
	outDir   string
	pdf      bool
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	opts, err := parseFlags(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	params := cfg.Synthetic
	params.NumSamples = opts.rows
	params.AnomalyFraction = opts.fraction
	params.WindowSamples = opts.window
	if err := params.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	service, err := newService(cfg, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	summary, err := service.BuildSynthetic(context.Background(), pipeline.SyntheticRequest{Params: params, Seed: opts.seed})
	if err != nil {
		fmt.Fprintln(os.Stderr, "synthesize:", err)
		os.Exit(1)
	}
	fmt.Printf("Synthetic dataset %s: %d rows, %d anomalous\n", summary.ID, summary.Rows, summary.Anomalies)
	for _, artifact := range summary.Artifacts {
		fmt.Println(artifact)
	}
}

func parseFlags(cfg config.Config) (options, error) {
	opts := options{}
	flag.IntVar(&opts.rows, "rows", cfg.Synthetic.NumSamples, "number of rows")
	flag.Uint64Var(&opts.seed, "seed", cfg.Seed, "random seed")
	flag.Float64Var(&opts.fraction, "fraction", cfg.Synthetic.AnomalyFraction, "anomalous share of rows in [0, 1]")
	flag.IntVar(&opts.window, "window", cfg.Synthetic.WindowSamples, "waveform samples per row")
	flag.StringVar(&opts.outDir, "out", cfg.Output.Dir, "output directory")
	flag.BoolVar(&opts.pdf, "pdf", cfg.Output.PDF, "write a PDF summary")
	flag.Parse()

	if opts.outDir == "" {
		return opts, errors.New("missing --out or OUTPUT_DIR")
	}
	return opts, nil
}

func newService(cfg config.Config, opts options) (*pipeline.Service, error) {
	filter, err := signal.NewBandFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	processor, err := pipeline.NewProcessor(filter, cfg.Thresholds.Current, cfg.Thresholds.Voltage)
	if err != nil {
		return nil, err
	}
	dir, err := filestore.NewDirectory(opts.outDir)
	if err != nil {
		return nil, err
	}
	return pipeline.NewService(memory.NewRecordStore(), processor,
		pipeline.WithArtifactStore(dir),
		pipeline.WithReports(false, opts.pdf),
		pipeline.WithLogger(log.New(os.Stderr, "", log.LstdFlags)),
	)
}
