package batchstore

import (
	"context"
	"encoding/csv"
	"os"
	"sync"

	"icaiscrape/lib/scrapers/batchlist"
)

// column headers of the exported file, in record order
var csvHeader = []string{
	"Region", "Pou", "Selected_Course",
	"Batch No", "Available Seats", "From Date", "To Date", "Batch Time",
	"Pou Name", "Course", "Open For", "Registration Start Date",
}

// CsvSink writes records to a flat csv file.
type CsvSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

func NewCsvSink(path string) (*CsvSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	writer := csv.NewWriter(file)
	err = writer.Write(csvHeader)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &CsvSink{file: file, writer: writer}, nil
}

func (s *CsvSink) Append(_ context.Context, records []batchlist.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		err := s.writer.Write([]string{
			r.Region, r.Pou, r.SelectedCourse,
			r.BatchNo, r.AvailableSeats, r.FromDate, r.ToDate, r.BatchTime,
			r.PouName, r.Course, r.OpenFor, r.RegistrationStartDate,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *CsvSink) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return err
	}
	return s.file.Close()
}

// Multi fans Append and Flush out to every given sink.
func Multi(sinks ...batchlist.Sink) batchlist.Sink {
	return multiSink(sinks)
}

type multiSink []batchlist.Sink

func (m multiSink) Append(ctx context.Context, records []batchlist.Record) error {
	for _, s := range m {
		if err := s.Append(ctx, records); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) Flush(ctx context.Context) error {
	for _, s := range m {
		if err := s.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}
