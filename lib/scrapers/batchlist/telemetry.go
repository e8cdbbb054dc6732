package batchlist

import (
	"icaiscrape/lib/restyutil"

	"go.opentelemetry.io/otel"
)

const library_name = "scrapers/batchlist"

var tracer = otel.Tracer(library_name)
var meter = otel.Meter(library_name)

var recordsScraped, _ = meter.Int64Counter("batchlist.records_scraped")
var tasksFailed, _ = meter.Int64Counter("batchlist.tasks_failed")

var instrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput makes every session created afterwards dump
// its request/response pairs to the given output. Debug tooling only.
func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	instrumentOutput = output
}
