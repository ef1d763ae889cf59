package http

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"

	datasetinterfaces "analyzer-training/internal/dataset/interfaces"
	telemetryapp "analyzer-training/internal/telemetry/application"
	telemetry "analyzer-training/internal/telemetry/domain"
)

const maxBodyBytes = 8 << 20

// IngestHandler accepts raw telemetry blobs from the collector gateway.
type IngestHandler struct {
	collector *telemetryapp.Collector
	logger    *log.Logger
}

// NewIngestHandler constructs an ingest handler.
func NewIngestHandler(collector *telemetryapp.Collector, logger *log.Logger) (*IngestHandler, error) {
	if collector == nil {
		return nil, errors.New("telemetry ingest: nil collector")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &IngestHandler{collector: collector, logger: logger}, nil
}

// ServeHTTP handles POST /ingest/records. A JSON body is an array of blobs; any other
// body holds one blob per line.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	blobs, err := readBlobs(r.Header.Get("Content-Type"), body)
	if err != nil {
		h.logger.Printf("telemetry ingest: decode error: %v", err)
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := h.collector.Collect(r.Context(), r.URL.Query().Get("window"), blobs)
	switch {
	case errors.Is(err, telemetryapp.ErrNoBlobs), errors.Is(err, telemetryapp.ErrInvalidWindow):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Printf("telemetry ingest: collect error: %v", err)
		http.Error(w, "collect error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func readBlobs(contentType string, body io.Reader) ([]string, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/json" {
		var blobs []string
		if err := json.NewDecoder(body).Decode(&blobs); err != nil {
			return nil, err
		}
		return blobs, nil
	}
	var blobs []string
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBodyBytes)
	for scanner.Scan() {
		blobs = append(blobs, scanner.Text())
	}
	return blobs, scanner.Err()
}

// CountsHandler serves the per-register occurrence table.
type CountsHandler struct {
	collector *telemetryapp.Collector
	logger    *log.Logger
}

// NewCountsHandler constructs a CountsHandler.
func NewCountsHandler(collector *telemetryapp.Collector, logger *log.Logger) (*CountsHandler, error) {
	if collector == nil {
		return nil, errors.New("register counts: nil collector")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CountsHandler{collector: collector, logger: logger}, nil
}

// ServeHTTP handles GET /api/v1/registers/counts?window=&format=json|csv.
func (h *CountsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	counts, err := h.collector.Counts(r.Context(), r.URL.Query().Get("window"))
	if err != nil {
		respondCollectError(w, h.logger, "register counts", err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=register_counts.csv")
		if err := datasetinterfaces.WriteCountsCSV(w, counts); err != nil {
			h.logger.Printf("register counts: write csv error: %v", err)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(counts)
}

// RecordsExportHandler serves the buffered records of a window as CSV.
type RecordsExportHandler struct {
	collector *telemetryapp.Collector
	logger    *log.Logger
}

// NewRecordsExportHandler constructs a RecordsExportHandler.
func NewRecordsExportHandler(collector *telemetryapp.Collector, logger *log.Logger) (*RecordsExportHandler, error) {
	if collector == nil {
		return nil, errors.New("records export: nil collector")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RecordsExportHandler{collector: collector, logger: logger}, nil
}

// ServeHTTP handles GET /api/v1/records/export.csv and /api/v1/records/1006.csv.
func (h *RecordsExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	window := r.URL.Query().Get("window")

	var (
		records  []telemetry.RawRecord
		filename string
		err      error
	)
	switch r.URL.Path {
	case "/api/v1/records/export.csv":
		records, err = h.collector.Records(r.Context(), window)
		filename = "records.csv"
	case "/api/v1/records/" + telemetry.RegisterCurrent.String() + ".csv":
		records, err = h.collector.Audit(r.Context(), window)
		filename = "records_" + telemetry.RegisterCurrent.String() + ".csv"
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		respondCollectError(w, h.logger, "records export", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := datasetinterfaces.WriteRecordsCSV(w, records); err != nil {
		h.logger.Printf("records export: write csv error: %v", err)
	}
}

func respondCollectError(w http.ResponseWriter, logger *log.Logger, component string, err error) {
	if errors.Is(err, telemetryapp.ErrInvalidWindow) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.Printf("%s: %v", component, err)
	http.Error(w, "query error", http.StatusInternalServerError)
}
