package interfaces

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	dataset "analyzer-training/internal/dataset/domain"
	telemetry "analyzer-training/internal/telemetry/domain"
	"analyzer-training/internal/telemetry/parser"
)

func TestWriteProcessedCSV(t *testing.T) {
	rows := []dataset.ProcessedRow{
		{Current: 5.6, CurrentIssue: true, Voltage: 230, ActivePower: 1288, Frequency: 50},
		{Current: 1.2, Voltage: 305.5, VoltageIssue: true, ActivePower: 276, Frequency: 49.9},
	}
	var buf bytes.Buffer
	if err := WriteProcessedCSV(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Raw data_Current,Current_Issue,Raw data_Voltage,Voltage_Issue,Active_Power,Frequency\n" +
		"5.6,1,230,0,1288,50\n" +
		"1.2,0,305.5,1,276,49.9\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}
}

func TestSyntheticCSVWriter_WaveformIsQuoted(t *testing.T) {
	var buf bytes.Buffer
	writer, err := NewSyntheticCSVWriter(&buf)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	row := dataset.SyntheticRow{
		Time:            time.Date(2024, 1, 1, 0, 2, 0, 0, time.UTC),
		VoltageWaveform: []float64{0.5, -1.25, 3},
		Current:         2,
		ActivePower:     460,
		THDVoltage:      0.01,
		Frequency:       50,
		Target:          true,
	}
	if err := writer.WriteRow(row); err != nil {
		t.Fatalf("write row: %v", err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if writer.Rows() != 1 {
		t.Fatalf("rows = %d, want 1", writer.Rows())
	}

	lines, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	waveform, err := dataset.DecodeWaveform(lines[1][1])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(waveform) != 3 || waveform[1] != -1.25 {
		t.Fatalf("waveform = %v", waveform)
	}
	if lines[1][0] != "2024-01-01 00:02:00" || lines[1][6] != "1" {
		t.Fatalf("unexpected row: %v", lines[1])
	}
}

func TestRecordsCSVRoundTrip(t *testing.T) {
	records := []telemetry.RawRecord{
		{StartRegister: "1006", RawData: "1.5"},
		{StartRegister: "", RawData: "7"},
		{StartRegister: "1009", RawData: ""},
	}
	var buf bytes.Buffer
	if err := WriteRecordsCSV(&buf, records); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadRecordsCSV(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("records = %d, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Fatalf("record %d = %+v, want %+v", i, got[i], records[i])
		}
	}
}

func TestReadRecordsCSV_ReorderedColumns(t *testing.T) {
	input := "\ufeffRaw data,Start register\n12,1007\n"
	got, err := ReadRecordsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].StartRegister != "1007" || got[0].RawData != "12" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if _, err := ReadRecordsCSV(strings.NewReader("a,b\n1,2\n")); !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("expected ErrMissingHeader, got %v", err)
	}
	if _, err := ReadRecordsCSV(strings.NewReader("")); !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("expected ErrMissingHeader for empty input, got %v", err)
	}
}

func TestWriteCountsCSV(t *testing.T) {
	var buf bytes.Buffer
	counts := []parser.RegisterCount{{Register: "1006", Count: 3}, {Register: "1010", Count: 1}}
	if err := WriteCountsCSV(&buf, counts); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Start register,Count\n1006,3\n1010,1\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}
}

func TestBuildProcessedXLSX(t *testing.T) {
	summary := dataset.BuildSummary{ID: "build-1", Kind: dataset.KindProcessed, Window: "20240101T00", Rows: 2}
	rows := []dataset.ProcessedRow{
		{Current: 5.6, CurrentIssue: true, Voltage: 230, ActivePower: 1288, Frequency: 50},
		{Current: 1.2, Voltage: 305.5, VoltageIssue: true, ActivePower: 276, Frequency: 49.9},
	}
	data, err := BuildProcessedXLSX(summary, rows)
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	header, err := f.GetCellValue("processed", "A1")
	if err != nil || header != "Raw data_Current" {
		t.Fatalf("header = %q, %v", header, err)
	}
	issue, err := f.GetCellValue("processed", "D3")
	if err != nil || issue != "1" {
		t.Fatalf("voltage issue = %q, %v", issue, err)
	}
	id, err := f.GetCellValue("summary", "B3")
	if err != nil || id != "build-1" {
		t.Fatalf("build id = %q, %v", id, err)
	}
}

func TestBuildSummaryPDF(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	summary := dataset.BuildSummary{
		ID:         "build-1",
		Kind:       dataset.KindProcessed,
		Rows:       100,
		Lengths:    map[string]int{"current": 100, "voltage": 100},
		Artifacts:  []string{"processed.csv"},
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
	}
	data, err := BuildSummaryPDF(summary)
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}
