package listings

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
	"github.com/rishtahub/rishta-backend/pkg/pagination"
)

type servicesRepository interface {
	Create(ctx context.Context, svc *models.VendorService) (*models.VendorService, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorService, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.VendorService, error)
	CountByProfile(ctx context.Context, profileID uuid.UUID) (int64, error)
	Update(ctx context.Context, svc *models.VendorService) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params searchParams) ([]models.VendorService, error)
}

type profileFinder interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
}

type activeSubscriptionFinder interface {
	GetActiveForProfile(ctx context.Context, profileID uuid.UUID) (*models.Subscription, error)
}

type planFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

// ServiceInput carries the writable vendor service fields.
type ServiceInput struct {
	Title       string          `json:"title" validate:"required"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category" validate:"required"`
	City        string          `json:"city" validate:"required"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Currency    string          `json:"currency,omitempty"`
	IsPublished *bool           `json:"is_published,omitempty"`
}

// SearchParams filters the public catalog.
type SearchParams struct {
	City     string
	Category string
	Cursor   string
	Limit    int
}

// SearchResult is one page of the public catalog.
type SearchResult struct {
	Items      []models.VendorService `json:"items"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// Service manages the bookable catalog for approved vendors.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input ServiceInput) (*models.VendorService, error)
	Update(ctx context.Context, userID, serviceID uuid.UUID, input ServiceInput) (*models.VendorService, error)
	Delete(ctx context.Context, userID, serviceID uuid.UUID) error
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.VendorService, error)
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo          servicesRepository
	Profiles      profileFinder
	Subscriptions activeSubscriptionFinder
	Plans         planFinder
}

type service struct {
	repo     servicesRepository
	profiles profileFinder
	subs     activeSubscriptionFinder
	plans    planFinder
}

// NewService validates dependencies and builds the listings service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("vendor services repository required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile finder required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription finder required")
	}
	if params.Plans == nil {
		return nil, fmt.Errorf("plan finder required")
	}
	return &service{
		repo:     params.Repo,
		profiles: params.Profiles,
		subs:     params.Subscriptions,
		plans:    params.Plans,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input ServiceInput) (*models.VendorService, error) {
	profile, plan, err := s.entitledProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}

	count, err := s.repo.CountByProfile(ctx, profile.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting services")
	}
	if count >= int64(plan.MaxServices) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("plan %s allows at most %d services", plan.Code, plan.MaxServices))
	}

	svc := &models.VendorService{
		VendorProfileID: profile.ID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		Category:        strings.TrimSpace(input.Category),
		City:            strings.TrimSpace(input.City),
		BasePrice:       input.BasePrice,
		Currency:        currencyOrDefault(input.Currency),
	}
	if input.IsPublished != nil {
		svc.IsPublished = *input.IsPublished
	}

	created, err := s.repo.Create(ctx, svc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating service")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, userID, serviceID uuid.UUID, input ServiceInput) (*models.VendorService, error) {
	profile, _, err := s.entitledProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	svc, err := s.ownedService(ctx, profile, serviceID)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		svc.Title = title
	}
	if input.Description != nil {
		svc.Description = input.Description
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		svc.Category = category
	}
	if city := strings.TrimSpace(input.City); city != "" {
		svc.City = city
	}
	if input.BasePrice.IsPositive() {
		svc.BasePrice = input.BasePrice
	}
	if input.Currency != "" {
		svc.Currency = currencyOrDefault(input.Currency)
	}
	if input.IsPublished != nil {
		svc.IsPublished = *input.IsPublished
	}

	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating service")
	}
	return svc, nil
}

func (s *service) Delete(ctx context.Context, userID, serviceID uuid.UUID) error {
	profile, err := s.vendorProfile(ctx, userID)
	if err != nil {
		return err
	}
	svc, err := s.ownedService(ctx, profile, serviceID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, svc.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting service")
	}
	return nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.VendorService, error) {
	profile, err := s.vendorProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	services, err := s.repo.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing services")
	}
	return services, nil
}

func (s *service) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	query := searchParams{
		City:     strings.TrimSpace(params.City),
		Category: strings.TrimSpace(params.Category),
		Limit:    pagination.NormalizeLimit(params.Limit) + 1,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching services")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &SearchResult{Items: rows}
	if len(rows) > limit {
		result.Items = rows[:limit]
		last := result.Items[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

// entitledProfile resolves the caller's approved profile together with the
// plan backing its active subscription.
func (s *service) entitledProfile(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, *models.Plan, error) {
	profile, err := s.vendorProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	sub, err := s.subs.GetActiveForProfile(ctx, profile.ID)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "an active subscription is required")
		}
		return nil, nil, err
	}

	plan, err := s.plans.FindByID(ctx, sub.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription plan not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up plan")
	}
	return profile, plan, nil
}

func (s *service) vendorProfile(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up vendor profile")
	}
	if profile.Status != enums.VendorStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor is not approved")
	}
	return profile, nil
}

func (s *service) ownedService(ctx context.Context, profile *models.VendorProfile, serviceID uuid.UUID) (*models.VendorService, error) {
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}
	svc, err := s.repo.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up service")
	}
	if svc.VendorProfileID != profile.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "service belongs to another vendor")
	}
	return svc, nil
}

func validateInput(input ServiceInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if strings.TrimSpace(input.City) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	}
	if input.BasePrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "base_price cannot be negative")
	}
	return nil
}

func currencyOrDefault(currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return "usd"
	}
	return currency
}
