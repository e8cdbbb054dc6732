package batchlist

import (
	"context"
	"log/slog"
	"sync"

	"icaiscrape/lib/webforms"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"
)

// Combination is one (region, unit) pair, the unit of fan-out work.
// Each combination discovers its own course options inside its task.
type Combination struct {
	Region webforms.Option
	Unit   webforms.Option
}

// FetchRegions loads the entry page once, discovers the cascading
// field names and reads the region options. A page without the three
// selects fails with webforms.DiscoveryError: nothing downstream can
// proceed without field identities.
func FetchRegions(ctx context.Context, target Target) ([]webforms.Option, webforms.FieldNames, error) {
	ctx, span := tracer.Start(ctx, "FetchRegions")
	defer span.End()

	sess, err := target.newSession()
	if err != nil {
		return nil, webforms.FieldNames{}, err
	}
	doc, err := sess.loadEntry(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load entry page")
		return nil, webforms.FieldNames{}, err
	}

	fields, err := webforms.LocateFields(doc, target.submitLabel())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "field discovery failed")
		return nil, webforms.FieldNames{}, err
	}

	regions, _ := webforms.Options(doc, fields.Region, target.placeholder())
	span.SetAttributes(attribute.Int("regions", len(regions)))
	slog.InfoContext(ctx, "regions discovered", "count", len(regions))
	return regions, fields, nil
}

// FetchUnits resolves the unit options of one region by simulating the
// region-change postback on a fresh session. Tokens are never reused
// across region branches, the server ties their validity to the exact
// navigation path. An absent unit select means the region legitimately
// has no units.
func FetchUnits(ctx context.Context, target Target, fields webforms.FieldNames, region webforms.Option) ([]webforms.Option, error) {
	ctx, span := tracer.Start(ctx, "FetchUnits")
	defer span.End()
	span.SetAttributes(attribute.String("region", region.Label))

	sess, err := target.newSession()
	if err != nil {
		return nil, err
	}
	_, err = sess.loadEntry(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load entry page")
		return nil, err
	}

	doc, err := sess.postback(ctx, sess.state.ChangePayload(fields.Region, map[string]string{
		fields.Region: region.Value,
	}))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "region selection postback failed")
		return nil, err
	}

	units, found := webforms.Options(doc, fields.Unit, target.placeholder())
	if !found {
		slog.DebugContext(ctx, "no unit select in response", "region", region.Label)
		return nil, nil
	}
	span.SetAttributes(attribute.Int("units", len(units)))
	return units, nil
}

// ResolveCombinations fans FetchUnits out over all regions under the
// given in-flight ceiling and flattens the results. A failing region
// branch is logged and contributes no combinations; it never aborts
// its siblings.
func ResolveCombinations(ctx context.Context, target Target, fields webforms.FieldNames, regions []webforms.Option, limit int64) []Combination {
	ctx, span := tracer.Start(ctx, "ResolveCombinations")
	defer span.End()

	if limit <= 0 {
		limit = DefaultConcurrency
	}
	sem := semaphore.NewWeighted(limit)

	var combos []Combination
	combosLock := sync.Mutex{}
	wg := sync.WaitGroup{}

	for _, region := range regions {
		region := region

		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			units, err := FetchUnits(ctx, target, fields, region)
			if err != nil {
				slog.WarnContext(ctx, "failed to fetch units", "region", region.Label, "err", err)
				return
			}
			slog.InfoContext(ctx, "units discovered", "region", region.Label, "count", len(units))

			combosLock.Lock()
			defer combosLock.Unlock()
			for _, unit := range units {
				combos = append(combos, Combination{Region: region, Unit: unit})
			}
		}()
	}

	wg.Wait()
	span.SetAttributes(attribute.Int("combinations", len(combos)))
	return combos
}
