package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"analyzer-training/internal/config"
	"analyzer-training/internal/dataset/infrastructure/filestore"
	datasetinterfaces "analyzer-training/internal/dataset/interfaces"
	pipeline "analyzer-training/internal/pipeline/application"
	"analyzer-training/internal/signal"
	telemetry "analyzer-training/internal/telemetry/domain"
	"analyzer-training/internal/telemetry/infrastructure/memory"
	"analyzer-training/internal/telemetry/parser"
)

const (
	formatCSV   = "csv"
	formatBlobs = "blobs"
)

type options struct {
	input  string
	format string
	window string
	outDir string
	xlsx   bool
	pdf    bool
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

	records, err := readInput(opts.input, opts.format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read input:", err)
		os.Exit(2)
	}

	ctx := context.Background()
	store := memory.NewRecordStore()
	if err := store.Append(ctx, opts.window, records); err != nil {
		fmt.Fprintln(os.Stderr, "buffer records:", err)
		os.Exit(2)
	}
	service, err := newService(cfg, opts, store)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	summary, err := service.BuildProcessed(ctx, opts.window)
	if err != nil {
		fmt.Fprintln(os.Stderr, "process:", err)
		os.Exit(1)
	}
	fmt.Printf("Processed dataset %s: %d rows from %d records (%d dropped), voltage THD %.6f\n",
		summary.ID, summary.Rows, summary.Records, summary.Dropped, summary.VoltageTHD)
	for _, artifact := range summary.Artifacts {
		fmt.Println(artifact)
	}
}

func parseFlags(cfg config.Config) (options, error) {
	opts := options{}
	flag.StringVar(&opts.input, "in", "", "input file of raw records")
	flag.StringVar(&opts.format, "format", formatCSV, "input format: csv (Start register, Raw data) or blobs (one raw blob per line)")
	flag.StringVar(&opts.window, "window", telemetry.WindowKey(time.Now()), "window key recorded in the build")
	flag.StringVar(&opts.outDir, "out", cfg.Output.Dir, "output directory")
	flag.BoolVar(&opts.xlsx, "xlsx", cfg.Output.XLSX, "write an XLSX workbook")
	flag.BoolVar(&opts.pdf, "pdf", cfg.Output.PDF, "write a PDF summary")
	flag.Parse()

	if opts.input == "" {
		return opts, errors.New("missing --in")
	}
	if opts.format != formatCSV && opts.format != formatBlobs {
		return opts, fmt.Errorf("unknown --format %q", opts.format)
	}
	if _, err := telemetry.ParseWindowKey(opts.window); err != nil {
		return opts, fmt.Errorf("--window must look like %s", telemetry.WindowLayout)
	}
	if opts.outDir == "" {
		return opts, errors.New("missing --out or OUTPUT_DIR")
	}
	return opts, nil
}

func readInput(path, format string) ([]telemetry.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if format == formatCSV {
		return datasetinterfaces.ReadRecordsCSV(f)
	}
	return readBlobs(f)
}

func readBlobs(r io.Reader) ([]telemetry.RawRecord, error) {
	var records []telemetry.RawRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		records = append(records, parser.Parse(line))
	}
	return records, scanner.Err()
}

func newService(cfg config.Config, opts options, store *memory.RecordStore) (*pipeline.Service, error) {
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
	return pipeline.NewService(store, processor,
		pipeline.WithArtifactStore(dir),
		pipeline.WithReports(opts.xlsx, opts.pdf),
		pipeline.WithLogger(log.New(os.Stderr, "", log.LstdFlags)),
	)
}
