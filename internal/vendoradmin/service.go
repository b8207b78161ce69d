package vendoradmin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	"github.com/rishtahub/rishta-backend/pkg/events"
	"github.com/rishtahub/rishta-backend/pkg/logger"
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

const maxReasonLength = 500

type profilesRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorProfile, error)
	Update(ctx context.Context, profile *models.VendorProfile) error
}

type pendingLister interface {
	ListByStatus(ctx context.Context, status enums.VendorStatus, cursor *pagination.Cursor, limit int) ([]models.VendorProfile, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event any) error
}

type processedPaymentFinder interface {
	FindLatestProcessedByProfile(ctx context.Context, profileID uuid.UUID) (*models.Payment, error)
}

type subscriptionActivator interface {
	GetActiveForProfile(ctx context.Context, profileID uuid.UUID) (*models.Subscription, error)
	ActivateFromPayment(ctx context.Context, profileID, planID, paymentID uuid.UUID) (*models.Subscription, error)
}

// Service applies admin review decisions to vendor profiles.
type Service interface {
	ListPending(ctx context.Context, params pagination.Params) (*PendingPage, error)
	Apply(ctx context.Context, adminID, profileID uuid.UUID, action enums.VendorAdminAction, reason string) (*models.VendorProfile, error)
}

// PendingPage is one page of vendors awaiting review.
type PendingPage struct {
	Profiles   []models.VendorProfile
	NextCursor string
}

type service struct {
	repo     profilesRepository
	lister   pendingLister
	bus      eventPublisher
	payments processedPaymentFinder
	subs     subscriptionActivator
	logg     *logger.Logger
}

// ServiceParams collects the dependencies for NewService. Payments and
// Subscriptions are optional; without them approval skips activation.
type ServiceParams struct {
	Repo          profilesRepository
	Lister        pendingLister
	Bus           eventPublisher
	Payments      processedPaymentFinder
	Subscriptions subscriptionActivator
	Logger        *logger.Logger
}

// NewService builds an admin vendor review service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("vendor profile repository required")
	}
	if params.Lister == nil {
		return nil, fmt.Errorf("pending lister required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	return &service{
		repo:     params.Repo,
		lister:   params.Lister,
		bus:      params.Bus,
		payments: params.Payments,
		subs:     params.Subscriptions,
		logg:     params.Logger,
	}, nil
}

func (s *service) ListPending(ctx context.Context, params pagination.Params) (*PendingPage, error) {
	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.lister.ListByStatus(ctx, enums.VendorStatusPendingApproval, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing pending vendors")
	}

	page := &PendingPage{Profiles: rows}
	if len(rows) > limit {
		page.Profiles = rows[:limit]
		last := page.Profiles[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) Apply(ctx context.Context, adminID, profileID uuid.UUID, action enums.VendorAdminAction, reason string) (*models.VendorProfile, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if !action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown action %q", action))
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > maxReasonLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason must be 500 characters or fewer")
	}

	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up vendor profile")
	}

	from := profile.Status
	target := action.TargetStatus()
	if !from.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot %s vendor while %s", action, from)).
			WithDetails(map[string]any{"from": from.String(), "to": target.String()})
	}

	now := time.Now().UTC()
	profile.Status = target
	profile.ReviewedByID = &adminID

	switch action {
	case enums.VendorAdminActionApprove, enums.VendorAdminActionUnsuspend:
		profile.ApprovedAt = &now
		profile.RejectionReason = nil
		profile.SuspendedReason = nil
	case enums.VendorAdminActionReject:
		if reason != "" {
			profile.RejectionReason = &reason
		}
	case enums.VendorAdminActionSuspend:
		if reason != "" {
			profile.SuspendedReason = &reason
		}
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving review decision")
	}

	if action == enums.VendorAdminActionApprove {
		s.activateOnApproval(ctx, profile)
	}

	s.publishDecision(ctx, profile, from, action, reason)
	return profile, nil
}

// activateOnApproval starts the subscription for an approved vendor when a
// processed payment already exists and no subscription is active yet. The
// approval itself is committed either way; activation problems are logged
// and retried by the payment verification path.
func (s *service) activateOnApproval(ctx context.Context, profile *models.VendorProfile) {
	if s.payments == nil || s.subs == nil {
		return
	}
	if _, err := s.subs.GetActiveForProfile(ctx, profile.ID); err == nil {
		return
	} else if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		if s.logg != nil {
			s.logg.Error(ctx, "checking active subscription on approval", err)
		}
		return
	}

	payment, err := s.payments.FindLatestProcessedByProfile(ctx, profile.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && s.logg != nil {
			s.logg.Error(ctx, "looking up processed payment on approval", err)
		}
		return
	}

	if _, err := s.subs.ActivateFromPayment(ctx, profile.ID, payment.PlanID, payment.ID); err != nil && s.logg != nil {
		s.logg.Error(ctx, "activating subscription on approval", err)
	}
}

// publishDecision emits the status-change and notification events after the
// decision is committed. Handler failures are logged, never surfaced.
func (s *service) publishDecision(ctx context.Context, profile *models.VendorProfile, from enums.VendorStatus, action enums.VendorAdminAction, reason string) {
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}

	if err := s.bus.Publish(ctx, events.VendorStatusChanged{
		VendorProfileID: profile.ID,
		UserID:          profile.UserID,
		From:            from,
		To:              profile.Status,
		Reason:          reasonPtr,
	}); err != nil && s.logg != nil {
		s.logg.Error(ctx, "vendor status event dispatch failed", err)
	}

	notification, ok := notificationFor(action, reason)
	if !ok {
		return
	}
	notification.UserID = profile.UserID
	if err := s.bus.Publish(ctx, notification); err != nil && s.logg != nil {
		s.logg.Error(ctx, "vendor notification dispatch failed", err)
	}
}

func notificationFor(action enums.VendorAdminAction, reason string) (events.Notify, bool) {
	switch action {
	case enums.VendorAdminActionApprove:
		return events.Notify{
			Type:     enums.NotificationTypeVendorApproved,
			Priority: enums.NotificationPriorityImmediate,
			Title:    "Your vendor account is approved",
			Message:  "Your profile passed review. You can now publish services and accept bookings.",
		}, true
	case enums.VendorAdminActionReject:
		message := "Your profile needs changes before it can be approved."
		if reason != "" {
			message = fmt.Sprintf("Your profile was not approved: %s", reason)
		}
		return events.Notify{
			Type:     enums.NotificationTypeVendorRejected,
			Priority: enums.NotificationPriorityHigh,
			Title:    "Your vendor profile was not approved",
			Message:  message,
		}, true
	case enums.VendorAdminActionSuspend:
		message := "Your vendor account has been suspended."
		if reason != "" {
			message = fmt.Sprintf("Your vendor account has been suspended: %s", reason)
		}
		return events.Notify{
			Type:     enums.NotificationTypeVendorSuspended,
			Priority: enums.NotificationPriorityImmediate,
			Title:    "Vendor account suspended",
			Message:  message,
		}, true
	case enums.VendorAdminActionUnsuspend:
		return events.Notify{
			Type:     enums.NotificationTypeVendorApproved,
			Priority: enums.NotificationPriorityHigh,
			Title:    "Vendor account reinstated",
			Message:  "Your vendor account is active again.",
		}, true
	default:
		return events.Notify{}, false
	}
}
