package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rishtahub/rishta-backend/internal/email"
	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	"github.com/rishtahub/rishta-backend/pkg/events"
	"github.com/rishtahub/rishta-backend/pkg/logger"
)

type creatorRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type profileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorProfile, error)
}

// Dispatcher turns domain events into persisted notifications and, for
// immediate- and high-priority messages, outbound email.
type Dispatcher struct {
	repo     creatorRepository
	users    userFinder
	profiles profileFinder
	mailer   email.Provider
	logg     *logger.Logger
}

// DispatcherParams names the dependencies for the notification dispatcher.
type DispatcherParams struct {
	Repo     creatorRepository
	Users    userFinder
	Profiles profileFinder
	Mailer   email.Provider
	Logger   *logger.Logger
}

// NewDispatcher builds a dispatcher and validates its dependencies.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile finder required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{
		repo:     params.Repo,
		users:    params.Users,
		profiles: params.Profiles,
		mailer:   params.Mailer,
		logg:     params.Logger,
	}, nil
}

// Register subscribes the dispatcher to the event bus.
func (d *Dispatcher) Register(bus *events.Bus) {
	bus.Subscribe(events.Notify{}, func(ctx context.Context, event any) error {
		notify, ok := event.(events.Notify)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		return d.handleNotify(ctx, notify)
	})
	bus.Subscribe(events.SubscriptionUpdate{}, func(ctx context.Context, event any) error {
		update, ok := event.(events.SubscriptionUpdate)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		return d.handleSubscriptionUpdate(ctx, update)
	})
	bus.Subscribe(events.VendorStatusChanged{}, func(ctx context.Context, event any) error {
		changed, ok := event.(events.VendorStatusChanged)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}
		logCtx := d.logg.WithFields(ctx, map[string]any{
			"vendor_profile_id": changed.VendorProfileID.String(),
			"from":              changed.From.String(),
			"to":                changed.To.String(),
		})
		d.logg.Info(logCtx, "vendor status changed")
		return nil
	})
}

func (d *Dispatcher) handleNotify(ctx context.Context, notify events.Notify) error {
	if notify.UserID == uuid.Nil {
		return fmt.Errorf("notify event missing user id")
	}

	priority := notify.Priority
	if !priority.IsValid() {
		priority = enums.NotificationPriorityLow
	}

	notification := &models.Notification{
		UserID:   notify.UserID,
		Type:     notify.Type,
		Priority: priority,
		Title:    notify.Title,
		Message:  notify.Message,
		Link:     notify.Link,
	}
	return d.deliver(ctx, notification)
}

// deliver persists the notification and emails the recipient when the
// priority warrants it.
func (d *Dispatcher) deliver(ctx context.Context, notification *models.Notification) error {
	if err := d.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if d.mailer == nil || !notifiesByEmail(notification.Priority) {
		return nil
	}

	user, err := d.users.FindByID(ctx, notification.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if err := d.mailer.Send(ctx, email.Message{
		To:      user.Email,
		Subject: notification.Title,
		Body:    notification.Message,
	}); err != nil {
		// The in-app notification is already stored; email failure is
		// reported but must not roll it back.
		logCtx := d.logg.WithField(ctx, "user_id", notification.UserID.String())
		d.logg.Warn(logCtx, "email delivery failed: "+err.Error())
	}
	return nil
}

func notifiesByEmail(priority enums.NotificationPriority) bool {
	return priority == enums.NotificationPriorityImmediate ||
		priority == enums.NotificationPriorityHigh
}

func (d *Dispatcher) handleSubscriptionUpdate(ctx context.Context, update events.SubscriptionUpdate) error {
	profile, err := d.profiles.FindByID(ctx, update.VendorProfileID)
	if err != nil {
		return fmt.Errorf("resolve vendor profile: %w", err)
	}

	notification := &models.Notification{
		UserID:   profile.UserID,
		Type:     enums.NotificationTypeSubscriptionUpdate,
		Priority: enums.NotificationPriorityHigh,
		Title:    "Subscription update",
		Message:  subscriptionMessage(update),
	}
	return d.deliver(ctx, notification)
}

func subscriptionMessage(update events.SubscriptionUpdate) string {
	switch update.Event {
	case enums.SubscriptionEventCreated:
		return fmt.Sprintf("Your %s subscription is now active.", update.PlanCode)
	case enums.SubscriptionEventUpgraded:
		return fmt.Sprintf("Your subscription was upgraded to %s.", update.PlanCode)
	case enums.SubscriptionEventCancelled:
		return fmt.Sprintf("Your %s subscription was cancelled.", update.PlanCode)
	case enums.SubscriptionEventExpired:
		return fmt.Sprintf("Your %s subscription has expired.", update.PlanCode)
	default:
		return fmt.Sprintf("Your %s subscription changed (%s).", update.PlanCode, update.Event)
	}
}
