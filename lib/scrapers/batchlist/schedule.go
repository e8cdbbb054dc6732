package batchlist

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"icaiscrape/lib/webforms"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"
)

const DefaultConcurrency = 150

// Scheduler fans one scrape task per combination out under a global
// in-flight ceiling. Tasks are fully isolated from each other: each
// owns its session and hidden-state chain, and a failing task only
// costs its own records.
type Scheduler struct {
	target Target
	fields webforms.FieldNames
	limit  int64
	sink   Sink
}

func NewScheduler(target Target, fields webforms.FieldNames, limit int64, sink Sink) *Scheduler {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Scheduler{
		target: target,
		fields: fields,
		limit:  limit,
		sink:   sink,
	}
}

// Run scrapes every combination and returns the total number of
// records handed to the sink. Task ordering is unspecified; the sink
// sees records in whatever order tasks complete.
func (s *Scheduler) Run(ctx context.Context, combos []Combination) int {
	ctx, span := tracer.Start(ctx, "scheduler:Run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("combinations", len(combos)),
		attribute.Int64("concurrency", s.limit),
	)

	sem := semaphore.NewWeighted(s.limit)
	wg := sync.WaitGroup{}
	var total atomic.Int64

	for _, combo := range combos {
		combo := combo

		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			n, err := s.scrapeCombination(ctx, combo)
			total.Add(int64(n))
			if err != nil {
				tasksFailed.Add(ctx, 1)
				slog.WarnContext(
					ctx, "scrape task failed",
					"region", combo.Region.Label,
					"unit", combo.Unit.Label,
					"records", n,
					"err", err,
				)
				return
			}
			slog.DebugContext(
				ctx, "scrape task done",
				"region", combo.Region.Label,
				"unit", combo.Unit.Label,
				"records", n,
			)
		}()
	}

	wg.Wait()
	return int(total.Load())
}

// scrapeCombination replays the full postback sequence for one
// (region, unit) pair and appends each course's records to the sink.
// It returns how many records made it to the sink, even on error: a
// task that fails halfway still yields what it already produced.
func (s *Scheduler) scrapeCombination(ctx context.Context, combo Combination) (int, error) {
	ctx, span := tracer.Start(ctx, "scrapeCombination")
	defer span.End()
	span.SetAttributes(
		attribute.String("region", combo.Region.Label),
		attribute.String("unit", combo.Unit.Label),
	)

	sess, err := s.target.newSession()
	if err != nil {
		return 0, err
	}

	// step A: fresh entry page, fresh token chain
	_, err = sess.loadEntry(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load entry page")
		return 0, err
	}

	// step B: select the region
	_, err = sess.postback(ctx, sess.state.ChangePayload(s.fields.Region, map[string]string{
		s.fields.Region: combo.Region.Value,
	}))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "region selection postback failed")
		return 0, err
	}

	// step C: select the unit; the region value is re-applied since the
	// server only remembers what is resent
	doc, err := sess.postback(ctx, sess.state.ChangePayload(s.fields.Unit, map[string]string{
		s.fields.Region: combo.Region.Value,
		s.fields.Unit:   combo.Unit.Value,
	}))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unit selection postback failed")
		return 0, err
	}

	courses, found := webforms.Options(doc, s.fields.Course, s.target.placeholder())
	if !found {
		slog.DebugContext(ctx, "no course select in response", "region", combo.Region.Label, "unit", combo.Unit.Label)
		return 0, nil
	}

	// step D: one plain submit per course, each replaying step C's tokens
	total := 0
	for _, course := range courses {
		payload := sess.state.SubmitPayload(s.fields.Submit, s.target.submitLabel(), map[string]string{
			s.fields.Region: combo.Region.Value,
			s.fields.Unit:   combo.Unit.Value,
			s.fields.Course: course.Value,
		})
		listDoc, err := sess.post(ctx, payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "list submit failed")
			return total, err
		}

		records := Normalize(listDoc, combo.Region.Label, combo.Unit.Label, course.Label)
		if len(records) == 0 {
			continue
		}
		err = s.sink.Append(ctx, records)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "sink append failed")
			return total, err
		}
		total += len(records)
		recordsScraped.Add(ctx, int64(len(records)))
	}

	return total, nil
}
