package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
)

type profilesRepository interface {
	Create(ctx context.Context, profile *models.VendorProfile) (*models.VendorProfile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorProfile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
	Update(ctx context.Context, profile *models.VendorProfile) error
}

type planCatalog interface {
	GetActivePlanByCode(ctx context.Context, code string) (*models.Plan, error)
}

// Service drives the vendor onboarding workflow up to the admin review gate.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
	EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
	SelectPlan(ctx context.Context, userID uuid.UUID, planCode string) (*models.VendorProfile, error)
	UpdateProfileStep(ctx context.Context, userID uuid.UUID, step ProfileStepInput) (*StepResult, error)
	SubmitForReview(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
}

// ProfileStepInput carries partial profile fields; nil fields are untouched.
type ProfileStepInput struct {
	BusinessName *string
	Category     *string
	Description  *string
	City         *string
	Address      *string
	ContactPhone *string
}

// StepResult reports persisted progress plus the mandatory fields still missing.
type StepResult struct {
	Profile       *models.VendorProfile
	MissingFields []string
}

type service struct {
	repo  profilesRepository
	plans planCatalog
}

// NewService builds an onboarding service backed by the provided repositories.
func NewService(repo profilesRepository, planSvc planCatalog) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendor profile repository required")
	}
	if planSvc == nil {
		return nil, fmt.Errorf("plan catalog required")
	}
	return &service{repo: repo, plans: planSvc}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up vendor profile")
	}
	return profile, nil
}

// EnsureProfile returns the caller's vendor profile, creating the initial
// registered row on first touch.
func (s *service) EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		return nil, err
	}
	return s.repo.Create(ctx, &models.VendorProfile{
		UserID: userID,
		Status: enums.VendorStatusRegistered,
	})
}

func (s *service) SelectPlan(ctx context.Context, userID uuid.UUID, planCode string) (*models.VendorProfile, error) {
	profile, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, err := s.plans.GetActivePlanByCode(ctx, planCode)
	if err != nil {
		return nil, err
	}

	// Re-selecting while still in plan_selected just swaps the plan.
	if profile.Status != enums.VendorStatusPlanSelected {
		if err := transition(profile, enums.VendorStatusPlanSelected); err != nil {
			return nil, err
		}
	}
	profile.SelectedPlanID = &plan.ID

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving plan selection")
	}
	return profile, nil
}

func (s *service) UpdateProfileStep(ctx context.Context, userID uuid.UUID, step ProfileStepInput) (*StepResult, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch profile.Status {
	case enums.VendorStatusPlanSelected, enums.VendorStatusProfileCompleted, enums.VendorStatusRejected:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("profile cannot be edited while %s", profile.Status)).
			WithDetails(map[string]any{"status": profile.Status.String()})
	}

	applyStep(profile, step)

	// Clearing a mandatory field never demotes the status; the workflow only
	// moves forward here and SubmitForReview re-validates completeness.
	missing := missingMandatoryFields(profile)
	if len(missing) == 0 && profile.Status != enums.VendorStatusProfileCompleted {
		if err := transition(profile, enums.VendorStatusProfileCompleted); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving profile step")
	}

	return &StepResult{Profile: profile, MissingFields: missing}, nil
}

func (s *service) SubmitForReview(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Re-submitting while already under review is a no-op.
	if profile.Status == enums.VendorStatusPendingApproval {
		return profile, nil
	}

	if missing := missingMandatoryFields(profile); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile is incomplete").
			WithDetails(map[string]any{"missing_fields": missing})
	}

	if err := transition(profile, enums.VendorStatusPendingApproval); err != nil {
		return nil, err
	}
	profile.RejectionReason = nil

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "submitting for review")
	}
	return profile, nil
}

func transition(profile *models.VendorProfile, to enums.VendorStatus) error {
	if !profile.Status.CanTransitionTo(to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move vendor from %s to %s", profile.Status, to)).
			WithDetails(map[string]any{"from": profile.Status.String(), "to": to.String()})
	}
	profile.Status = to
	return nil
}

func applyStep(profile *models.VendorProfile, step ProfileStepInput) {
	if step.BusinessName != nil {
		profile.BusinessName = trimmed(step.BusinessName)
	}
	if step.Category != nil {
		profile.Category = trimmed(step.Category)
	}
	if step.Description != nil {
		profile.Description = trimmed(step.Description)
	}
	if step.City != nil {
		profile.City = trimmed(step.City)
	}
	if step.Address != nil {
		profile.Address = trimmed(step.Address)
	}
	if step.ContactPhone != nil {
		profile.ContactPhone = trimmed(step.ContactPhone)
	}
}

func trimmed(value *string) *string {
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

// mandatoryFields maps field names to their accessor for completeness checks.
var mandatoryFields = []struct {
	name string
	get  func(*models.VendorProfile) *string
}{
	{"business_name", func(p *models.VendorProfile) *string { return p.BusinessName }},
	{"category", func(p *models.VendorProfile) *string { return p.Category }},
	{"description", func(p *models.VendorProfile) *string { return p.Description }},
	{"city", func(p *models.VendorProfile) *string { return p.City }},
	{"contact_phone", func(p *models.VendorProfile) *string { return p.ContactPhone }},
}

func missingMandatoryFields(profile *models.VendorProfile) []string {
	var missing []string
	for _, field := range mandatoryFields {
		value := field.get(profile)
		if value == nil || strings.TrimSpace(*value) == "" {
			missing = append(missing, field.name)
		}
	}
	if profile.SelectedPlanID == nil {
		missing = append(missing, "selected_plan")
	}
	return missing
}
