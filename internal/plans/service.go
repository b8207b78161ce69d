package plans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
)

type plansRepository interface {
	Create(ctx context.Context, plan *models.Plan) (*models.Plan, error)
	ListActive(ctx context.Context) ([]models.Plan, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	FindByCode(ctx context.Context, code string) (*models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) error
}

// Service exposes the plan catalog to onboarding and admin flows.
type Service interface {
	ListActivePlans(ctx context.Context) ([]models.Plan, error)
	GetActivePlanByCode(ctx context.Context, code string) (*models.Plan, error)
	CreatePlan(ctx context.Context, input CreatePlanInput) (*models.Plan, error)
	RetirePlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error)
}

type service struct {
	repo plansRepository
}

// CreatePlanInput holds the fields required to publish a plan.
type CreatePlanInput struct {
	Code          string          `json:"code" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency,omitempty"`
	DurationDays  int             `json:"duration_days" validate:"required,min=1"`
	MaxServices   int             `json:"max_services,omitempty"`
	MaxPhotos     int             `json:"max_photos,omitempty"`
	FeaturedSlots int             `json:"featured_slots,omitempty"`
}

// NewService builds a plan service backed by the provided repository.
func NewService(repo plansRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("plan repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) GetActivePlanByCode(ctx context.Context, code string) (*models.Plan, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan code is required")
	}

	plan, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("plan %q not found", code))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up plan")
	}
	if plan.Status != enums.PlanStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("plan %q is no longer offered", code))
	}
	return plan, nil
}

func (s *service) CreatePlan(ctx context.Context, input CreatePlanInput) (*models.Plan, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.DurationDays <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration_days must be positive")
	}

	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "usd"
	}

	plan := &models.Plan{
		Code:          code,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		Currency:      currency,
		DurationDays:  input.DurationDays,
		MaxServices:   input.MaxServices,
		MaxPhotos:     input.MaxPhotos,
		FeaturedSlots: input.FeaturedSlots,
		Status:        enums.PlanStatusActive,
	}

	created, err := s.repo.Create(ctx, plan)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("plan %q already exists", code))
	}
	return created, nil
}

func (s *service) RetirePlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error) {
	if planID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan id is required")
	}

	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up plan")
	}
	if plan.Status == enums.PlanStatusRetired {
		return plan, nil
	}

	plan.Status = enums.PlanStatusRetired
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "retiring plan")
	}
	return plan, nil
}
