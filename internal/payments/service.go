package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/internal/subscriptions"
	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	"github.com/rishtahub/rishta-backend/pkg/logger"
)

type profilesRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
}

type plansRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the payment gate: checkout creation and verification.
type Service interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID) (*Checkout, error)
	VerifySuccess(ctx context.Context, correlationID string) (*models.Payment, error)
	VerifyFailure(ctx context.Context, correlationID, reason string) (*models.Payment, error)
}

// Checkout is the client-facing result of opening a gateway session.
type Checkout struct {
	Payment *models.Payment
	Session *CheckoutSession
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo              Repository
	ProfilesRepo      profilesRepository
	PlansRepo         plansRepository
	Gateway           Gateway
	Subscriptions     subscriptions.Service
	TransactionRunner txRunner
	Logger            *logger.Logger
}

type service struct {
	repo     Repository
	profiles profilesRepository
	plans    plansRepository
	gateway  Gateway
	subs     subscriptions.Service
	txRunner txRunner
	logg     *logger.Logger
}

// NewService builds the payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if params.ProfilesRepo == nil {
		return nil, fmt.Errorf("vendor profile repository required")
	}
	if params.PlansRepo == nil {
		return nil, fmt.Errorf("plans repository required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription service required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     params.Repo,
		profiles: params.ProfilesRepo,
		plans:    params.PlansRepo,
		gateway:  params.Gateway,
		subs:     params.Subscriptions,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
	}, nil
}

// CreateCheckout opens a gateway session for the caller's selected plan. The
// pending payment row is persisted before the gateway is called so a
// verification arriving early still finds its correlation target.
func (s *service) CreateCheckout(ctx context.Context, userID uuid.UUID) (*Checkout, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading vendor profile")
	}
	if profile.SelectedPlanID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "select a plan before paying")
	}

	plan, err := s.plans.FindByID(ctx, *profile.SelectedPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "selected plan no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading selected plan")
	}

	payment := &models.Payment{
		VendorProfileID: profile.ID,
		PlanID:          plan.ID,
		CorrelationID:   uuid.NewString(),
		Amount:          plan.Price,
		Currency:        plan.Currency,
		Status:          enums.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording pending payment")
	}

	session, err := s.gateway.CreateCheckout(ctx, CheckoutParams{
		CorrelationID: payment.CorrelationID,
		Amount:        plan.Price,
		Currency:      plan.Currency,
		Description:   fmt.Sprintf("Rishta plan %s", plan.Code),
	})
	if err != nil {
		if _, markErr := s.repo.MarkFailed(ctx, payment.ID, "gateway session failed"); markErr != nil && s.logg != nil {
			s.logg.Error(ctx, "marking payment failed after gateway error", markErr)
		}
		return nil, err
	}

	if err := s.repo.SetGatewayRef(ctx, payment.ID, session.GatewayRef); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving gateway reference")
	}
	ref := session.GatewayRef
	payment.GatewayRef = &ref

	return &Checkout{Payment: payment, Session: session}, nil
}

// VerifySuccess reconciles a successful gateway outcome against the pending
// payment and activates the subscription. Both writes share one transaction:
// a failed activation rolls the status flip back, so the payment stays
// pending and a webhook retry can reconcile it. Replays of the same
// correlation ID fail with PAYMENT_ALREADY_PROCESSED and change nothing.
func (s *service) VerifySuccess(ctx context.Context, correlationID string) (*models.Payment, error) {
	payment, err := s.findForVerification(ctx, correlationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		marked, markErr := s.repo.WithTx(tx).MarkProcessed(ctx, payment.ID, now)
		if markErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, markErr, "marking payment processed")
		}
		if !marked {
			return alreadyProcessed(correlationID)
		}
		_, actErr := s.subs.ActivateFromPaymentTx(ctx, tx, payment.VendorProfileID, payment.PlanID, payment.ID)
		return actErr
	})
	if err != nil {
		return nil, err
	}

	payment.Status = enums.PaymentStatusProcessed
	payment.ProcessedAt = &now
	return payment, nil
}

// VerifyFailure records a failed gateway outcome for the pending payment.
func (s *service) VerifyFailure(ctx context.Context, correlationID, reason string) (*models.Payment, error) {
	payment, err := s.findForVerification(ctx, correlationID)
	if err != nil {
		return nil, err
	}

	marked, err := s.repo.MarkFailed(ctx, payment.ID, reason)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking payment failed")
	}
	if !marked {
		return nil, alreadyProcessed(correlationID)
	}
	payment.Status = enums.PaymentStatusFailed
	payment.FailureReason = &reason
	return payment, nil
}

func (s *service) findForVerification(ctx context.Context, correlationID string) (*models.Payment, error) {
	if correlationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "correlation id is required")
	}

	payment, err := s.repo.FindByCorrelationID(ctx, correlationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodePaymentNotFound,
				fmt.Sprintf("no payment for correlation id %s", correlationID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment")
	}
	if payment.Status != enums.PaymentStatusPending {
		return nil, alreadyProcessed(correlationID)
	}
	return payment, nil
}

func alreadyProcessed(correlationID string) error {
	return pkgerrors.New(pkgerrors.CodePaymentProcessed,
		fmt.Sprintf("payment %s already reconciled", correlationID))
}
