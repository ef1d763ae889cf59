package interfaces

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	dataset "analyzer-training/internal/dataset/domain"
	telemetry "analyzer-training/internal/telemetry/domain"
	"analyzer-training/internal/telemetry/parser"
)

var (
	recordsHeader = []string{"Start register", "Raw data"}
	countsHeader  = []string{"Start register", "Count"}
)

// ErrMissingHeader is returned when a CSV input lacks the expected columns.
var ErrMissingHeader = errors.New("export: missing header")

// WriteProcessedCSV writes rows in the processed schema.
func WriteProcessedCSV(w io.Writer, rows []dataset.ProcessedRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(dataset.ProcessedHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.Strings()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SyntheticCSVWriter streams synthetic records so full-size waveforms never sit in memory together.
type SyntheticCSVWriter struct {
	writer *csv.Writer
	rows   int
}

// NewSyntheticCSVWriter writes the header and returns the writer.
func NewSyntheticCSVWriter(w io.Writer) (*SyntheticCSVWriter, error) {
	writer := csv.NewWriter(w)
	if err := writer.Write(dataset.SyntheticHeader); err != nil {
		return nil, err
	}
	return &SyntheticCSVWriter{writer: writer}, nil
}

// Write appends one record.
func (s *SyntheticCSVWriter) Write(record dataset.SyntheticRecord) error {
	if err := s.writer.Write(record.Strings()); err != nil {
		return err
	}
	s.rows++
	return nil
}

// WriteRow serializes and appends one generated row.
func (s *SyntheticCSVWriter) WriteRow(row dataset.SyntheticRow) error {
	record, err := dataset.ToRecord(row)
	if err != nil {
		return err
	}
	return s.Write(record)
}

// Rows returns the number of records written.
func (s *SyntheticCSVWriter) Rows() int {
	return s.rows
}

// Flush flushes buffered output.
func (s *SyntheticCSVWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}

// WriteSyntheticCSV writes records in the synthetic schema.
func WriteSyntheticCSV(w io.Writer, records []dataset.SyntheticRecord) error {
	writer, err := NewSyntheticCSVWriter(w)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// WriteRecordsCSV writes parsed records, empty strings marking missing fields.
func WriteRecordsCSV(w io.Writer, records []telemetry.RawRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(recordsHeader); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write([]string{record.StartRegister, record.RawData}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadRecordsCSV reads a file written by WriteRecordsCSV. Columns are located by header name.
func ReadRecordsCSV(r io.Reader) ([]telemetry.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, err
	}
	registerCol, valueCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case recordsHeader[0]:
			registerCol = i
		case recordsHeader[1]:
			valueCol = i
		}
	}
	if registerCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("%w: want %q", ErrMissingHeader, recordsHeader)
	}

	var records []telemetry.RawRecord
	for {
		line, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, telemetry.RawRecord{
			StartRegister: field(line, registerCol),
			RawData:       field(line, valueCol),
		})
	}
	return records, nil
}

// WriteCountsCSV writes the per-register occurrence table.
func WriteCountsCSV(w io.Writer, counts []parser.RegisterCount) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(countsHeader); err != nil {
		return err
	}
	for _, c := range counts {
		if err := writer.Write([]string{c.Register, strconv.Itoa(c.Count)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func field(line []string, col int) string {
	if col < len(line) {
		return strings.TrimSpace(line[col])
	}
	return ""
}
