// Package batchstore persists scraped batch records. Both sinks buffer
// appends from concurrent scrape tasks behind a mutex and write out on
// Flush, so a run materializes either at its end or not at all.
package batchstore

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	"icaiscrape/lib/scrapers/batchlist"
	"icaiscrape/services/batchstore/db"
)

// Store writes records into a sqlite database, replacing the previous
// run's rows in the same transaction that inserts the new ones.
type Store struct {
	db  *sql.DB
	qry *db.Queries

	mu  sync.Mutex
	buf []batchlist.Record
}

func New(database *sql.DB) *Store {
	return &Store{
		db:  database,
		qry: db.New(database),
	}
}

func (s *Store) Append(ctx context.Context, records []batchlist.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, records...)
	return nil
}

func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteAllBatches(ctx)
	if err != nil {
		return err
	}

	for _, r := range s.buf {
		err := txqry.CreateBatch(ctx, db.CreateBatchParams{
			Region:                r.Region,
			Pou:                   r.Pou,
			SelectedCourse:        r.SelectedCourse,
			BatchNo:               r.BatchNo,
			AvailableSeats:        r.AvailableSeats,
			FromDate:              r.FromDate,
			ToDate:                r.ToDate,
			BatchTime:             r.BatchTime,
			PouName:               r.PouName,
			Course:                r.Course,
			OpenFor:               r.OpenFor,
			RegistrationStartDate: r.RegistrationStartDate,
		})
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return err
	}

	slog.Debug("flushed records to sqlite", "count", len(s.buf))
	s.buf = nil
	return nil
}
