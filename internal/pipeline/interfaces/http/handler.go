package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"analyzer-training/internal/audit"
	"analyzer-training/internal/auth"
	dataset "analyzer-training/internal/dataset/domain"
	pipeline "analyzer-training/internal/pipeline/application"
	"analyzer-training/internal/signal"
	"analyzer-training/internal/synthetic"
	telemetry "analyzer-training/internal/telemetry/domain"
)

const maxRequestBytes = 1 << 20

// Builder is the part of the pipeline service the handler drives.
type Builder interface {
	BuildProcessed(ctx context.Context, window string) (dataset.BuildSummary, error)
	BuildSynthetic(ctx context.Context, req pipeline.SyntheticRequest) (dataset.BuildSummary, error)
}

// Handler triggers dataset builds.
type Handler struct {
	builder  Builder
	defaults synthetic.Params
	seed     uint64
	logger   *log.Logger
	audit    audit.Logger
}

// HandlerOption customizes the handler.
type HandlerOption func(*Handler)

// WithAudit records every build request.
func WithAudit(logger audit.Logger) HandlerOption {
	return func(h *Handler) {
		h.audit = logger
	}
}

// NewHandler constructs a handler. defaults and seed apply to synthetic requests that omit them.
func NewHandler(builder Builder, defaults synthetic.Params, seed uint64, logger *log.Logger, opts ...HandlerOption) (*Handler, error) {
	if builder == nil {
		return nil, errors.New("dataset handler: nil builder")
	}
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{builder: builder, defaults: defaults, seed: seed, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

type processedRequest struct {
	Window string `json:"window"`
}

type syntheticRequest struct {
	Seed   *uint64          `json:"seed"`
	Params synthetic.Params `json:"params"`
}

type errorResponse struct {
	Error   string         `json:"error"`
	Lengths map[string]int `json:"lengths,omitempty"`
}

// ServeHTTP handles POST /api/v1/datasets/processed and POST /api/v1/datasets/synthetic.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/datasets/processed":
		h.handleProcessed(w, r)
	case "/api/v1/datasets/synthetic":
		h.handleSynthetic(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleProcessed(w http.ResponseWriter, r *http.Request) {
	var req processedRequest
	if err := decodeOptional(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	window := strings.TrimSpace(req.Window)
	if window == "" {
		window = strings.TrimSpace(r.URL.Query().Get("window"))
	}
	if window == "" {
		http.Error(w, "window is required", http.StatusBadRequest)
		return
	}
	if _, err := telemetry.ParseWindowKey(window); err != nil {
		http.Error(w, "window must look like "+telemetry.WindowLayout, http.StatusBadRequest)
		return
	}

	summary, err := h.builder.BuildProcessed(r.Context(), window)
	h.record(r, audit.ActionBuildProcessed, processedRequest{Window: window}, summary, err)
	if err != nil {
		h.respondBuildError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (h *Handler) handleSynthetic(w http.ResponseWriter, r *http.Request) {
	req := syntheticRequest{Params: h.defaults}
	req.Params.HarmonicOrders = append([]int(nil), h.defaults.HarmonicOrders...)
	if err := decodeOptional(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	seed := h.seed
	if req.Seed != nil {
		seed = *req.Seed
	}

	summary, err := h.builder.BuildSynthetic(r.Context(), pipeline.SyntheticRequest{Params: req.Params, Seed: seed})
	req.Seed = &seed
	h.record(r, audit.ActionBuildSynthetic, req, summary, err)
	if err != nil {
		h.respondBuildError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (h *Handler) respondBuildError(w http.ResponseWriter, err error) {
	var alignErr *dataset.DataAlignmentError
	switch {
	case errors.Is(err, pipeline.ErrNoRecords):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &alignErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Lengths: alignErr.Lengths})
	case errors.Is(err, signal.ErrInsufficientSamples):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, synthetic.ErrInvalidParams):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Printf("dataset handler: build error: %v", err)
		http.Error(w, "build error", http.StatusInternalServerError)
	}
}

func (h *Handler) record(r *http.Request, action string, request any, summary dataset.BuildSummary, buildErr error) {
	if h.audit == nil {
		return
	}
	metadata, _ := json.Marshal(request)
	outcome := "success"
	if buildErr != nil {
		outcome = "error"
	}
	entry := audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "dataset_build",
		ResourceID:   summary.ID,
		Outcome:      outcome,
		Metadata:     metadata,
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	}
	if err := h.audit.Log(r.Context(), entry); err != nil {
		h.logger.Printf("dataset handler: audit error: %v", err)
	}
}

// decodeOptional decodes a JSON body into v. An empty body leaves v untouched.
func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
