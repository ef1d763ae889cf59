package application

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"strconv"
	"time"

	dataset "analyzer-training/internal/dataset/domain"
	datasetinterfaces "analyzer-training/internal/dataset/interfaces"
	"analyzer-training/internal/observability/metrics"
	"analyzer-training/internal/pipeline/notify"
	"analyzer-training/internal/synthetic"
	telemetry "analyzer-training/internal/telemetry/domain"
	"analyzer-training/internal/telemetry/parser"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"

	syntheticBatchSize = 50
)

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SyntheticRequest selects generation parameters and seed for one synthetic build.
type SyntheticRequest struct {
	Params synthetic.Params
	Seed   uint64
}

// Service builds datasets and writes them to the configured sinks.
type Service struct {
	records   telemetry.RecordStore
	processor *Processor
	repo      dataset.Repository
	artifacts []dataset.ArtifactStore
	notifier  notify.Notifier
	xlsx      bool
	pdf       bool
	logger    *log.Logger
	clock     Clock
}

// ServiceOption customizes the service.
type ServiceOption func(*Service)

// WithRepository persists summaries and rows.
func WithRepository(repo dataset.Repository) ServiceOption {
	return func(s *Service) {
		s.repo = repo
	}
}

// WithArtifactStore adds a destination for exported files.
func WithArtifactStore(store dataset.ArtifactStore) ServiceOption {
	return func(s *Service) {
		if store != nil {
			s.artifacts = append(s.artifacts, store)
		}
	}
}

// WithNotifier announces successful builds.
func WithNotifier(notifier notify.Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithReports enables the XLSX workbook and the PDF summary.
func WithReports(xlsx, pdf bool) ServiceOption {
	return func(s *Service) {
		s.xlsx = xlsx
		s.pdf = pdf
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs a build service.
func NewService(records telemetry.RecordStore, processor *Processor, opts ...ServiceOption) (*Service, error) {
	if records == nil {
		return nil, errors.New("pipeline: nil record store")
	}
	if processor == nil {
		return nil, errors.New("pipeline: nil processor")
	}
	service := &Service{
		records:   records,
		processor: processor,
		logger:    log.Default(),
		clock:     systemClock{},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// BuildProcessed builds the processed dataset for window.
func (s *Service) BuildProcessed(ctx context.Context, window string) (dataset.BuildSummary, error) {
	if s == nil {
		return dataset.BuildSummary{}, ErrNilService
	}
	started := s.clock.Now()
	summary := dataset.BuildSummary{
		ID:        buildID(dataset.KindProcessed, window, started),
		Kind:      dataset.KindProcessed,
		Window:    window,
		StartedAt: started,
	}
	err := s.buildProcessed(ctx, &summary)
	s.finish(ctx, &summary, err)
	return summary, err
}

func (s *Service) buildProcessed(ctx context.Context, summary *dataset.BuildSummary) error {
	records, err := s.records.List(ctx, summary.Window)
	if err != nil {
		return fmt.Errorf("pipeline: list records: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: %s", ErrNoRecords, summary.Window)
	}
	summary.Records = len(records)

	result, err := s.processor.Process(records)
	summary.Lengths = result.Lengths
	summary.Dropped = len(result.Dropped)
	summary.VoltageTHD = result.VoltageTHD
	for _, dropped := range result.Dropped {
		metrics.IncParseDrop(dropped.Field)
	}
	if summary.Dropped > 0 {
		s.logger.Printf("dataset build: %s dropped %d unparseable records", summary.ID, summary.Dropped)
	}
	if err != nil {
		return err
	}
	summary.Rows = len(result.Rows)
	summary.CurrentIssues = result.CurrentIssues
	summary.VoltageIssues = result.VoltageIssues
	metrics.AddIssues("current", result.CurrentIssues)
	metrics.AddIssues("voltage", result.VoltageIssues)

	if s.repo != nil {
		if err := s.repo.SaveBuild(ctx, *summary); err != nil {
			return fmt.Errorf("pipeline: save build: %w", err)
		}
		if err := s.repo.SaveProcessedRows(ctx, summary.ID, result.Rows); err != nil {
			return fmt.Errorf("pipeline: save rows: %w", err)
		}
	}

	var csvBuf bytes.Buffer
	if err := datasetinterfaces.WriteProcessedCSV(&csvBuf, result.Rows); err != nil {
		return fmt.Errorf("pipeline: encode csv: %w", err)
	}
	if err := s.putBytes(ctx, summary, "processed.csv", contentTypeCSV, csvBuf.Bytes()); err != nil {
		return err
	}
	if err := s.putRecordExports(ctx, summary, records); err != nil {
		return err
	}
	if s.xlsx && len(s.artifacts) > 0 {
		data, err := datasetinterfaces.BuildProcessedXLSX(*summary, result.Rows)
		if err != nil {
			metrics.IncArtifact("xlsx", metrics.ResultError)
			return fmt.Errorf("pipeline: build xlsx: %w", err)
		}
		if err := s.putBytes(ctx, summary, "processed.xlsx", contentTypeXLSX, data); err != nil {
			return err
		}
	}
	metrics.AddRows(string(dataset.KindProcessed), summary.Rows)
	return s.putReport(ctx, summary)
}

// putRecordExports writes the all-records, current audit and register count tables.
func (s *Service) putRecordExports(ctx context.Context, summary *dataset.BuildSummary, records []telemetry.RawRecord) error {
	if len(s.artifacts) == 0 {
		return nil
	}
	acc := parser.NewAccumulator()
	acc.AddAll(records)

	var all, audit, counts bytes.Buffer
	if err := datasetinterfaces.WriteRecordsCSV(&all, acc.All()); err != nil {
		return fmt.Errorf("pipeline: encode records: %w", err)
	}
	if err := datasetinterfaces.WriteRecordsCSV(&audit, acc.Audit()); err != nil {
		return fmt.Errorf("pipeline: encode audit: %w", err)
	}
	if err := datasetinterfaces.WriteCountsCSV(&counts, acc.Counts()); err != nil {
		return fmt.Errorf("pipeline: encode counts: %w", err)
	}
	if err := s.putBytes(ctx, summary, "records.csv", contentTypeCSV, all.Bytes()); err != nil {
		return err
	}
	if err := s.putBytes(ctx, summary, "records_"+telemetry.RegisterCurrent.String()+".csv", contentTypeCSV, audit.Bytes()); err != nil {
		return err
	}
	return s.putBytes(ctx, summary, "register_counts.csv", contentTypeCSV, counts.Bytes())
}

// BuildSynthetic generates the synthetic dataset. Rows are streamed to a temporary CSV and to the
// repository in batches, so the full dataset is never held in memory.
func (s *Service) BuildSynthetic(ctx context.Context, req SyntheticRequest) (dataset.BuildSummary, error) {
	if s == nil {
		return dataset.BuildSummary{}, ErrNilService
	}
	started := s.clock.Now()
	summary := dataset.BuildSummary{
		ID:        buildID(dataset.KindSynthetic, strconv.FormatUint(req.Seed, 10), started),
		Kind:      dataset.KindSynthetic,
		Seed:      req.Seed,
		StartedAt: started,
	}
	err := s.buildSynthetic(ctx, req, &summary)
	s.finish(ctx, &summary, err)
	return summary, err
}

func (s *Service) buildSynthetic(ctx context.Context, req SyntheticRequest, summary *dataset.BuildSummary) error {
	gen, err := synthetic.NewGenerator(req.Params)
	if err != nil {
		return err
	}
	if s.repo != nil {
		if err := s.repo.SaveBuild(ctx, *summary); err != nil {
			return fmt.Errorf("pipeline: save build: %w", err)
		}
	}

	tmp, err := os.CreateTemp("", "synthetic-*.csv")
	if err != nil {
		return fmt.Errorf("pipeline: create temp: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()
	writer, err := datasetinterfaces.NewSyntheticCSVWriter(tmp)
	if err != nil {
		return fmt.Errorf("pipeline: encode csv: %w", err)
	}

	batch := make([]dataset.SyntheticRecord, 0, syntheticBatchSize)
	offset := 0
	flush := func() error {
		if s.repo == nil || len(batch) == 0 {
			return nil
		}
		if err := s.repo.SaveSyntheticRows(ctx, summary.ID, offset, batch); err != nil {
			return fmt.Errorf("pipeline: save rows: %w", err)
		}
		offset += len(batch)
		batch = batch[:0]
		return nil
	}

	err = gen.GenerateEach(synthetic.NewSource(req.Seed), func(row dataset.SyntheticRow) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := dataset.ToRecord(row)
		if err != nil {
			return err
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("pipeline: write csv: %w", err)
		}
		if row.Target {
			summary.Anomalies++
		}
		summary.Rows++
		if s.repo == nil {
			return nil
		}
		batch = append(batch, record)
		if len(batch) == syntheticBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("pipeline: write csv: %w", err)
	}
	metrics.AddRows(string(dataset.KindSynthetic), summary.Rows)
	metrics.AddAnomalies(summary.Anomalies)

	for _, store := range s.artifacts {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("pipeline: rewind csv: %w", err)
		}
		if err := s.put(ctx, store, summary, "synthetic.csv", contentTypeCSV, tmp); err != nil {
			return err
		}
	}
	return s.putReport(ctx, summary)
}

func (s *Service) putReport(ctx context.Context, summary *dataset.BuildSummary) error {
	if !s.pdf || len(s.artifacts) == 0 {
		return nil
	}
	summary.FinishedAt = s.clock.Now()
	data, err := datasetinterfaces.BuildSummaryPDF(*summary)
	if err != nil {
		metrics.IncArtifact("pdf", metrics.ResultError)
		return fmt.Errorf("pipeline: build pdf: %w", err)
	}
	return s.putBytes(ctx, summary, "summary.pdf", contentTypePDF, data)
}

func (s *Service) putBytes(ctx context.Context, summary *dataset.BuildSummary, name, contentType string, data []byte) error {
	for _, store := range s.artifacts {
		if err := s.put(ctx, store, summary, name, contentType, bytes.NewReader(data)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) put(ctx context.Context, store dataset.ArtifactStore, summary *dataset.BuildSummary, name, contentType string, body io.Reader) error {
	format := path.Ext(name)
	if format != "" {
		format = format[1:]
	}
	location, err := store.Put(ctx, artifactName(summary, name), contentType, body)
	if err != nil {
		metrics.IncArtifact(format, metrics.ResultError)
		return fmt.Errorf("pipeline: put %s: %w", name, err)
	}
	metrics.IncArtifact(format, metrics.ResultSuccess)
	summary.Artifacts = append(summary.Artifacts, location)
	return nil
}

func (s *Service) finish(ctx context.Context, summary *dataset.BuildSummary, err error) {
	summary.FinishedAt = s.clock.Now()
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
		s.logger.Printf("dataset build: %s failed: %v", summary.ID, err)
	} else {
		s.logger.Printf("dataset build: %s wrote %d rows to %d artifacts", summary.ID, summary.Rows, len(summary.Artifacts))
	}
	metrics.ObserveBuild(string(summary.Kind), result, summary.Duration())

	if err != nil {
		s.discard(ctx, summary)
		return
	}
	if s.repo != nil {
		if saveErr := s.repo.SaveBuild(ctx, *summary); saveErr != nil {
			s.logger.Printf("dataset build: %s save summary error: %v", summary.ID, saveErr)
		}
	}
	if s.notifier != nil {
		if notifyErr := s.notifier.Notify(ctx, *summary); notifyErr != nil {
			s.logger.Printf("dataset build: %s notify error: %v", summary.ID, notifyErr)
		}
	}
}

// discard removes a partially persisted build so it never looks complete.
func (s *Service) discard(ctx context.Context, summary *dataset.BuildSummary) {
	if s.repo == nil {
		return
	}
	if err := s.repo.DeleteBuild(context.WithoutCancel(ctx), summary.ID); err != nil {
		s.logger.Printf("dataset build: %s discard error: %v", summary.ID, err)
	}
}

func artifactName(summary *dataset.BuildSummary, name string) string {
	if summary.Window != "" {
		return path.Join(string(summary.Kind), summary.Window, summary.ID, name)
	}
	return path.Join(string(summary.Kind), summary.ID, name)
}

func buildID(kind dataset.Kind, key string, at time.Time) string {
	sum := sha1.Sum([]byte(string(kind) + "|" + key + "|" + at.UTC().Format(time.RFC3339Nano)))
	return string(kind) + "-" + hex.EncodeToString(sum[:6])
}
