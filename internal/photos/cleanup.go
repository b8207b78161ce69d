package photos

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	"github.com/rishtahub/rishta-backend/pkg/logger"
)

const cleanupBatchSize = 200

type cleanupRepository interface {
	FindAll(ctx context.Context, batchSize int, fn func([]models.Photo) error) error
	DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type existenceChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// Cleaner removes photo rows whose backing object is gone. Running it
// twice in a row removes nothing on the second pass.
type Cleaner struct {
	repo  cleanupRepository
	store existenceChecker
	logg  *logger.Logger
}

func NewCleaner(repo cleanupRepository, store existenceChecker, logg *logger.Logger) (*Cleaner, error) {
	if repo == nil {
		return nil, fmt.Errorf("cleanup repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	return &Cleaner{repo: repo, store: store, logg: logg}, nil
}

// Run scans all photo rows and deletes the orphans. It returns the number
// of rows removed.
func (c *Cleaner) Run(ctx context.Context) (int, error) {
	var orphans []uuid.UUID
	err := c.repo.FindAll(ctx, cleanupBatchSize, func(batch []models.Photo) error {
		for _, photo := range batch {
			exists, err := c.store.Exists(ctx, photo.ObjectKey)
			if err != nil {
				return fmt.Errorf("checking object %s: %w", photo.ObjectKey, err)
			}
			if !exists {
				orphans = append(orphans, photo.ID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scanning photos")
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	removed, err := c.repo.DeleteBatch(ctx, orphans)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing orphaned photos")
	}
	if c.logg != nil {
		c.logg.Info(c.logg.WithField(ctx, "removed", removed), "orphaned photo rows removed")
	}
	return int(removed), nil
}
