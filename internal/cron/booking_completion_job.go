package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/rishtahub/rishta-backend/pkg/logger"
)

const bookingCompletionBatchSize = 200

type bookingCompleter interface {
	CompleteDue(ctx context.Context, now time.Time, batchSize int) (int, error)
}

type BookingCompletionJobParams struct {
	Logger    *logger.Logger
	Bookings  bookingCompleter
	BatchSize int
}

func NewBookingCompletionJob(params BookingCompletionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("bookings service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = bookingCompletionBatchSize
	}
	return &bookingCompletionJob{
		logg:      params.Logger,
		bookings:  params.Bookings,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type bookingCompletionJob struct {
	logg      *logger.Logger
	bookings  bookingCompleter
	batchSize int
	now       func() time.Time
}

func (j *bookingCompletionJob) Name() string { return "booking-completion" }

// Run drains past-dated confirmed bookings batch by batch until none remain.
func (j *bookingCompletionJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	total := 0
	for {
		moved, err := j.bookings.CompleteDue(ctx, now, j.batchSize)
		if err != nil {
			return fmt.Errorf("booking completion: %w", err)
		}
		total += moved
		if moved < j.batchSize {
			break
		}
	}
	logCtx := j.logg.WithField(ctx, "bookings_completed", total)
	j.logg.Info(logCtx, "booking completion complete")
	return nil
}
