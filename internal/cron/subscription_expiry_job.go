package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/rishtahub/rishta-backend/pkg/logger"
)

const subscriptionExpiryBatchSize = 100

type subscriptionExpirer interface {
	ExpireDue(ctx context.Context, now time.Time, batchSize int) (int, error)
}

type SubscriptionExpiryJobParams struct {
	Logger        *logger.Logger
	Subscriptions subscriptionExpirer
	BatchSize     int
}

func NewSubscriptionExpiryJob(params SubscriptionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscriptions service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = subscriptionExpiryBatchSize
	}
	return &subscriptionExpiryJob{
		logg:          params.Logger,
		subscriptions: params.Subscriptions,
		batchSize:     batchSize,
		now:           time.Now,
	}, nil
}

type subscriptionExpiryJob struct {
	logg          *logger.Logger
	subscriptions subscriptionExpirer
	batchSize     int
	now           func() time.Time
}

func (j *subscriptionExpiryJob) Name() string { return "subscription-expiry" }

func (j *subscriptionExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	total := 0
	for {
		expired, err := j.subscriptions.ExpireDue(ctx, now, j.batchSize)
		if err != nil {
			return fmt.Errorf("subscription expiry: %w", err)
		}
		total += expired
		if expired < j.batchSize {
			break
		}
	}
	logCtx := j.logg.WithField(ctx, "subscriptions_expired", total)
	j.logg.Info(logCtx, "subscription expiry complete")
	return nil
}
