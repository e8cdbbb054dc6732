package batchstore

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"icaiscrape/lib/scrapers/batchlist"
	"icaiscrape/lib/sqliteutil"
	"icaiscrape/lib/telemetry"
	"icaiscrape/services/batchstore/db"

	"github.com/stretchr/testify/require"
)

func testRecord(batchNo string) batchlist.Record {
	return batchlist.Record{
		Region:         "North",
		Pou:            "UnitA",
		SelectedCourse: "Audit",

		BatchNo:               batchNo,
		AvailableSeats:        "5",
		FromDate:              "2024-01-01",
		ToDate:                "2024-01-10",
		BatchTime:             "10am-1pm",
		PouName:               "UnitA",
		Course:                "Audit",
		OpenFor:               "CA",
		RegistrationStartDate: "2023-12-01",
	}
}

func TestStore(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/batchstore")
	defer cleanup()

	database, err := sqliteutil.OpenDB(db.Schema, ":memory:")
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	store := New(database)

	require.NoError(t, store.Append(ctx, []batchlist.Record{testRecord("B001")}))
	require.NoError(t, store.Append(ctx, []batchlist.Record{testRecord("B002")}))
	require.NoError(t, store.Flush(ctx))

	batches, err := db.New(database).ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	require.Equal(t, "B001", batches[0].BatchNo)
	require.Equal(t, "North", batches[0].Region)
	require.Equal(t, "2023-12-01", batches[0].RegistrationStartDate)
}

func TestStoreFlushReplacesPreviousRun(t *testing.T) {
	database, err := sqliteutil.OpenDB(db.Schema, ":memory:")
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()

	store := New(database)
	require.NoError(t, store.Append(ctx, []batchlist.Record{testRecord("B001")}))
	require.NoError(t, store.Flush(ctx))

	store = New(database)
	require.NoError(t, store.Append(ctx, []batchlist.Record{testRecord("B002")}))
	require.NoError(t, store.Flush(ctx))

	batches, err := db.New(database).ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Equal(t, "B002", batches[0].BatchNo)
}

func TestStoreConcurrentAppend(t *testing.T) {
	database, err := sqliteutil.OpenDB(db.Schema, ":memory:")
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	store := New(database)

	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Append(ctx, []batchlist.Record{testRecord("B")})
		}()
	}
	wg.Wait()
	require.NoError(t, store.Flush(ctx))

	count, err := db.New(database).CountBatches(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 50, count)
}

func TestCsvSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	sink, err := NewCsvSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(context.Background(), []batchlist.Record{testRecord("B001")}))
	require.NoError(t, sink.Flush(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, csvHeader, rows[0])
	require.Equal(t, []string{
		"North", "UnitA", "Audit",
		"B001", "5", "2024-01-01", "2024-01-10", "10am-1pm",
		"UnitA", "Audit", "CA", "2023-12-01",
	}, rows[1])
}

func TestMulti(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	csvSink, err := NewCsvSink(path)
	require.NoError(t, err)

	database, err := sqliteutil.OpenDB(db.Schema, ":memory:")
	require.NoError(t, err)
	defer database.Close()

	ctx := context.Background()
	sink := Multi(New(database), csvSink)
	require.NoError(t, sink.Append(ctx, []batchlist.Record{testRecord("B001")}))
	require.NoError(t, sink.Flush(ctx))

	count, err := db.New(database).CountBatches(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "B001")
}
