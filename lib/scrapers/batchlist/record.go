package batchlist

import "context"

// Record is one row of the results table joined with the selections
// that produced it. All values are kept as the page printed them.
type Record struct {
	Region         string
	Pou            string
	SelectedCourse string

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

// Sink receives scraped records. Append is called concurrently from
// scrape tasks and must be safe for that; Flush is called once after
// the run completes.
type Sink interface {
	Append(ctx context.Context, records []Record) error
	Flush(ctx context.Context) error
}
