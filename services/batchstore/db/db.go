package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const createBatch = `
INSERT INTO batches (
    region, pou, selected_course,
    batch_no, available_seats, from_date, to_date, batch_time,
    pou_name, course, open_for, registration_start_date
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateBatchParams struct {
	Region                string
	Pou                   string
	SelectedCourse        string
	BatchNo               string
	AvailableSeats        string
	FromDate              string
	ToDate                string
	BatchTime             string
	PouName               string
	Course                string
	OpenFor               string
	RegistrationStartDate string
}

func (q *Queries) CreateBatch(ctx context.Context, arg CreateBatchParams) error {
	_, err := q.db.ExecContext(ctx, createBatch,
		arg.Region,
		arg.Pou,
		arg.SelectedCourse,
		arg.BatchNo,
		arg.AvailableSeats,
		arg.FromDate,
		arg.ToDate,
		arg.BatchTime,
		arg.PouName,
		arg.Course,
		arg.OpenFor,
		arg.RegistrationStartDate,
	)
	return err
}

const deleteAllBatches = `DELETE FROM batches`

func (q *Queries) DeleteAllBatches(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllBatches)
	return err
}

const countBatches = `SELECT COUNT(*) FROM batches`

func (q *Queries) CountBatches(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countBatches)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listBatches = `
SELECT region, pou, selected_course,
    batch_no, available_seats, from_date, to_date, batch_time,
    pou_name, course, open_for, registration_start_date
FROM batches
`

type Batch = CreateBatchParams

func (q *Queries) ListBatches(ctx context.Context) ([]Batch, error) {
	rows, err := q.db.QueryContext(ctx, listBatches)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Batch
	for rows.Next() {
		var b Batch
		err := rows.Scan(
			&b.Region,
			&b.Pou,
			&b.SelectedCourse,
			&b.BatchNo,
			&b.AvailableSeats,
			&b.FromDate,
			&b.ToDate,
			&b.BatchTime,
			&b.PouName,
			&b.Course,
			&b.OpenFor,
			&b.RegistrationStartDate,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
