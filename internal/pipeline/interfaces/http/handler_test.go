package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"analyzer-training/internal/audit"
	"analyzer-training/internal/auth"
	dataset "analyzer-training/internal/dataset/domain"
	pipeline "analyzer-training/internal/pipeline/application"
	"analyzer-training/internal/signal"
	"analyzer-training/internal/synthetic"
)

type builderStub struct {
	window    string
	synthetic pipeline.SyntheticRequest
	err       error
}

func (b *builderStub) BuildProcessed(ctx context.Context, window string) (dataset.BuildSummary, error) {
	b.window = window
	if b.err != nil {
		return dataset.BuildSummary{}, b.err
	}
	return dataset.BuildSummary{ID: "processed-1", Kind: dataset.KindProcessed, Window: window, Rows: 40}, nil
}

func (b *builderStub) BuildSynthetic(ctx context.Context, req pipeline.SyntheticRequest) (dataset.BuildSummary, error) {
	b.synthetic = req
	if b.err != nil {
		return dataset.BuildSummary{}, b.err
	}
	return dataset.BuildSummary{ID: "synthetic-1", Kind: dataset.KindSynthetic, Rows: req.Params.NumSamples, Seed: req.Seed}, nil
}

func newHandler(t *testing.T, builder Builder) *Handler {
	t.Helper()
	handler, err := NewHandler(builder, synthetic.DefaultParams(), 42, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func serve(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestHandler_Processed(t *testing.T) {
	builder := &builderStub{}
	handler := newHandler(t, builder)

	resp := serve(handler, http.MethodPost, "/api/v1/datasets/processed", `{"window":"20240101T00"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var summary dataset.BuildSummary
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.ID != "processed-1" || builder.window != "20240101T00" {
		t.Fatalf("unexpected summary %+v for window %q", summary, builder.window)
	}

	resp = serve(handler, http.MethodPost, "/api/v1/datasets/processed?window=20240101T01", "")
	if resp.Code != http.StatusCreated || builder.window != "20240101T01" {
		t.Fatalf("query window: %d %q", resp.Code, builder.window)
	}
}

func TestHandler_ProcessedValidation(t *testing.T) {
	handler := newHandler(t, &builderStub{})
	cases := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"method", http.MethodGet, "/api/v1/datasets/processed", "", http.StatusMethodNotAllowed},
		{"missing window", http.MethodPost, "/api/v1/datasets/processed", "{}", http.StatusBadRequest},
		{"bad window", http.MethodPost, "/api/v1/datasets/processed", `{"window":"2024-01-01"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/v1/datasets/processed", "{", http.StatusBadRequest},
		{"unknown path", http.MethodPost, "/api/v1/datasets/other", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		if resp := serve(handler, tc.method, tc.target, tc.body); resp.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.Code)
		}
	}
}

func TestHandler_BuildErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"no records", fmt.Errorf("%w: 20240101T00", pipeline.ErrNoRecords), http.StatusNotFound},
		{"alignment", fmt.Errorf("pipeline: assemble: %w", &dataset.DataAlignmentError{Lengths: map[string]int{"current": 100, "voltage": 98}}), http.StatusUnprocessableEntity},
		{"short", &signal.InsufficientSamplesError{Got: 3, Need: 18}, http.StatusUnprocessableEntity},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		handler := newHandler(t, &builderStub{err: tc.err})
		resp := serve(handler, http.MethodPost, "/api/v1/datasets/processed", `{"window":"20240101T00"}`)
		if resp.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.Code)
		}
		if tc.name == "alignment" {
			var body errorResponse
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Lengths["voltage"] != 98 {
				t.Fatalf("lengths = %v", body.Lengths)
			}
		}
	}
}

func TestHandler_Synthetic(t *testing.T) {
	builder := &builderStub{}
	handler := newHandler(t, builder)

	resp := serve(handler, http.MethodPost, "/api/v1/datasets/synthetic", `{"seed":7,"params":{"num_samples":10,"window_samples":64}}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	got := builder.synthetic
	if got.Seed != 7 || got.Params.NumSamples != 10 || got.Params.WindowSamples != 64 {
		t.Fatalf("request = %+v", got)
	}
	if got.Params.AnomalyFraction != 0.2 || got.Params.LineFrequency != 50 {
		t.Fatalf("defaults not kept: %+v", got.Params)
	}

	resp = serve(handler, http.MethodPost, "/api/v1/datasets/synthetic", "")
	if resp.Code != http.StatusCreated || builder.synthetic.Seed != 42 || builder.synthetic.Params.NumSamples != 1000 {
		t.Fatalf("default request: %d %+v", resp.Code, builder.synthetic)
	}

	handler = newHandler(t, &builderStub{err: fmt.Errorf("%w: num_samples must be positive", synthetic.ErrInvalidParams)})
	if resp := serve(handler, http.MethodPost, "/api/v1/datasets/synthetic", `{"params":{"num_samples":0}}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

type auditStub struct {
	entries []audit.Entry
}

func (a *auditStub) Log(ctx context.Context, entry audit.Entry) error {
	a.entries = append(a.entries, entry)
	return nil
}

func TestHandler_AuditsBuilds(t *testing.T) {
	trail := &auditStub{}
	handler, err := NewHandler(&builderStub{}, synthetic.DefaultParams(), 42, nil, WithAudit(trail))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/processed", strings.NewReader(`{"window":"20240101T00"}`))
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.RoleAdmin, "user-9"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if len(trail.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(trail.entries))
	}
	entry := trail.entries[0]
	if entry.Actor != "user-9" || entry.Role != "admin" || entry.Action != audit.ActionBuildProcessed {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.ResourceID != "processed-1" || entry.Outcome != "success" || string(entry.Metadata) != `{"window":"20240101T00"}` {
		t.Fatalf("entry = %+v", entry)
	}
}
