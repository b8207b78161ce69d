package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	"github.com/rishtahub/rishta-backend/pkg/events"
	"github.com/rishtahub/rishta-backend/pkg/logger"
)

type plansRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Service owns the subscription lifecycle for vendor profiles.
type Service interface {
	ActivateFromPayment(ctx context.Context, profileID, planID, paymentID uuid.UUID) (*models.Subscription, error)
	ActivateFromPaymentTx(ctx context.Context, tx *gorm.DB, profileID, planID, paymentID uuid.UUID) (*models.Subscription, error)
	GetActiveForProfile(ctx context.Context, profileID uuid.UUID) (*models.Subscription, error)
	CancelActive(ctx context.Context, profileID uuid.UUID) (*models.Subscription, error)
	ExpireDue(ctx context.Context, now time.Time, batchSize int) (int, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo              Repository
	PlansRepo         plansRepository
	TransactionRunner txRunner
	Bus               eventPublisher
	Logger            *logger.Logger
}

type service struct {
	repo     Repository
	plans    plansRepository
	txRunner txRunner
	bus      eventPublisher
	logg     *logger.Logger
}

// NewService builds the subscription service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if params.PlansRepo == nil {
		return nil, fmt.Errorf("plans repository required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	return &service{
		repo:     params.Repo,
		plans:    params.PlansRepo,
		txRunner: params.TransactionRunner,
		bus:      params.Bus,
		logg:     params.Logger,
	}, nil
}

// ActivateFromPayment creates the active subscription bound to a processed
// payment. Any previously active subscription for the profile is marked
// superseded in the same transaction, so the one-active invariant holds even
// with concurrent verifications racing against the partial unique index.
func (s *service) ActivateFromPayment(ctx context.Context, profileID, planID, paymentID uuid.UUID) (*models.Subscription, error) {
	var sub *models.Subscription
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		sub, txErr = s.ActivateFromPaymentTx(ctx, tx, profileID, planID, paymentID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ActivateFromPaymentTx performs the activation inside the caller's
// transaction, so payment reconciliation and activation commit or roll back
// together.
func (s *service) ActivateFromPaymentTx(ctx context.Context, tx *gorm.DB, profileID, planID, paymentID uuid.UUID) (*models.Subscription, error) {
	if profileID == uuid.Nil || planID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile and plan are required")
	}

	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading plan")
	}

	now := time.Now().UTC()
	sub := &models.Subscription{
		VendorProfileID: profileID,
		PlanID:          planID,
		Status:          enums.SubscriptionStatusActive,
		StartsAt:        now,
		ExpiresAt:       now.Add(time.Duration(plan.DurationDays) * 24 * time.Hour),
	}
	if paymentID != uuid.Nil {
		sub.PaymentID = &paymentID
	}

	repo := s.repo.WithTx(tx)
	event := enums.SubscriptionEventCreated

	prior, findErr := repo.FindActiveByProfile(ctx, profileID)
	if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, findErr, "activating subscription")
	}

	if createErr := repo.Create(ctx, sub); createErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, createErr, "activating subscription")
	}

	if prior != nil {
		prior.Status = enums.SubscriptionStatusSuperseded
		prior.SupersededByID = &sub.ID
		if updateErr := repo.Update(ctx, prior); updateErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, updateErr, "activating subscription")
		}
		event = enums.SubscriptionEventUpgraded
	}

	s.publish(ctx, profileID, event, plan.Code)
	return sub, nil
}

func (s *service) GetActiveForProfile(ctx context.Context, profileID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.repo.FindActiveByProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading active subscription")
	}
	return sub, nil
}

func (s *service) CancelActive(ctx context.Context, profileID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.GetActiveForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub.Status = enums.SubscriptionStatusCancelled
	sub.CancelledAt = &now
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling subscription")
	}

	planCode := s.planCode(ctx, sub.PlanID)
	s.publish(ctx, profileID, enums.SubscriptionEventCancelled, planCode)
	return sub, nil
}

// ExpireDue flips active subscriptions whose window closed before now.
// Returns the number of subscriptions expired.
func (s *service) ExpireDue(ctx context.Context, now time.Time, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	due, err := s.repo.ListActiveExpiredBefore(ctx, now, batchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing due subscriptions")
	}

	expired := 0
	for i := range due {
		sub := &due[i]
		sub.Status = enums.SubscriptionStatusExpired
		if err := s.repo.Update(ctx, sub); err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "expiring subscription failed", err)
			}
			continue
		}
		expired++
		s.publish(ctx, sub.VendorProfileID, enums.SubscriptionEventExpired, s.planCode(ctx, sub.PlanID))
	}
	return expired, nil
}

func (s *service) planCode(ctx context.Context, planID uuid.UUID) string {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return ""
	}
	return plan.Code
}

func (s *service) publish(ctx context.Context, profileID uuid.UUID, event enums.SubscriptionEvent, planCode string) {
	err := s.bus.Publish(ctx, events.SubscriptionUpdate{
		VendorProfileID: profileID,
		Event:           event,
		PlanCode:        planCode,
	})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "subscription event dispatch failed", err)
	}
}
