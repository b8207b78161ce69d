package cron

import (
	"context"
	"fmt"

	"github.com/rishtahub/rishta-backend/pkg/logger"
)

type orphanCleaner interface {
	Run(ctx context.Context) (int, error)
}

type PhotoCleanupJobParams struct {
	Logger  *logger.Logger
	Cleaner orphanCleaner
}

func NewPhotoCleanupJob(params PhotoCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Cleaner == nil {
		return nil, fmt.Errorf("photo cleaner required")
	}
	return &photoCleanupJob{logg: params.Logger, cleaner: params.Cleaner}, nil
}

type photoCleanupJob struct {
	logg    *logger.Logger
	cleaner orphanCleaner
}

func (j *photoCleanupJob) Name() string { return "photo-cleanup" }

func (j *photoCleanupJob) Run(ctx context.Context) error {
	removed, err := j.cleaner.Run(ctx)
	if err != nil {
		return fmt.Errorf("photo cleanup: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "rows_removed", removed)
	j.logg.Info(logCtx, "photo cleanup complete")
	return nil
}
