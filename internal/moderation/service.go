package moderation

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

type moderationRepository interface {
	CreateBlock(ctx context.Context, block *models.Block) (*models.Block, error)
	DeleteBlock(ctx context.Context, blockerID, blockedUserID uuid.UUID) (bool, error)
	IsBlockedEitherWay(ctx context.Context, userA, userB uuid.UUID) (bool, error)
	ListBlocksByUser(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error)
	CreateReport(ctx context.Context, report *models.Report) (*models.Report, error)
	FindReportByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	UpdateReport(ctx context.Context, report *models.Report) error
	ListReports(ctx context.Context, params listReportsParams) ([]models.Report, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type vendorProfileFinder interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
}

type vendorSuspender interface {
	Apply(ctx context.Context, adminID, profileID uuid.UUID, action enums.VendorAdminAction, reason string) (*models.VendorProfile, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// ReportInput is what a user submits when reporting another user.
type ReportInput struct {
	ReportedUserID uuid.UUID `json:"reported_user_id" validate:"required"`
	Reason         string    `json:"reason" validate:"required"`
	Details        *string   `json:"details,omitempty"`
}

// ResolveInput is the admin decision on an open report.
type ResolveInput struct {
	Action        enums.ReportStatus `json:"action" validate:"required"`
	Note          *string            `json:"note,omitempty"`
	SuspendVendor bool               `json:"suspend_vendor,omitempty"`
}

// ReportListParams filters the admin report queue.
type ReportListParams struct {
	Status enums.ReportStatus
	pagination.Params
}

// ReportPage is one cursor page of reports.
type ReportPage struct {
	Items      []models.Report `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// Service covers user blocks and the admin report queue.
type Service interface {
	Block(ctx context.Context, blockerID, blockedUserID uuid.UUID) error
	Unblock(ctx context.Context, blockerID, blockedUserID uuid.UUID) error
	ListBlocks(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error)
	IsBlockedEitherWay(ctx context.Context, userA, userB uuid.UUID) (bool, error)
	Report(ctx context.Context, reporterID uuid.UUID, input ReportInput) (*models.Report, error)
	ListReports(ctx context.Context, params ReportListParams) (*ReportPage, error)
	Resolve(ctx context.Context, adminID, reportID uuid.UUID, input ResolveInput) (*models.Report, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo     moderationRepository
	Users    userFinder
	Profiles vendorProfileFinder
	Vendors  vendorSuspender
	Bus      eventPublisher
	Logger   *logger.Logger
}

type service struct {
	repo     moderationRepository
	users    userFinder
	profiles vendorProfileFinder
	vendors  vendorSuspender
	bus      eventPublisher
	logg     *logger.Logger
}

// NewService validates dependencies and builds the moderation service.
// Vendors may be nil when report actioning never needs to suspend.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("moderation repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		profiles: params.Profiles,
		vendors:  params.Vendors,
		bus:      params.Bus,
		logg:     params.Logger,
	}, nil
}

func (s *service) Block(ctx context.Context, blockerID, blockedUserID uuid.UUID) error {
	if blockerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if blockedUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "blocked user id is required")
	}
	if blockerID == blockedUserID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot block yourself")
	}
	if err := s.requireUser(ctx, blockedUserID); err != nil {
		return err
	}

	_, err := s.repo.CreateBlock(ctx, &models.Block{BlockerID: blockerID, BlockedUserID: blockedUserID})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.New(pkgerrors.CodeConflict, "user already blocked")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating block")
	}
	return nil
}

func (s *service) Unblock(ctx context.Context, blockerID, blockedUserID uuid.UUID) error {
	if blockerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	found, err := s.repo.DeleteBlock(ctx, blockerID, blockedUserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing block")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "block not found")
	}
	return nil
}

func (s *service) ListBlocks(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error) {
	if blockerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	blocks, err := s.repo.ListBlocksByUser(ctx, blockerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing blocks")
	}
	return blocks, nil
}

func (s *service) IsBlockedEitherWay(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	return s.repo.IsBlockedEitherWay(ctx, userA, userB)
}

func (s *service) Report(ctx context.Context, reporterID uuid.UUID, input ReportInput) (*models.Report, error) {
	if reporterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ReportedUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reported_user_id is required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}
	if reporterID == input.ReportedUserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot report yourself")
	}
	if err := s.requireUser(ctx, input.ReportedUserID); err != nil {
		return nil, err
	}

	report := &models.Report{
		ReporterID:     reporterID,
		ReportedUserID: input.ReportedUserID,
		Reason:         strings.TrimSpace(input.Reason),
		Details:        input.Details,
		Status:         enums.ReportStatusOpen,
	}
	created, err := s.repo.CreateReport(ctx, report)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating report")
	}
	return created, nil
}

func (s *service) ListReports(ctx context.Context, params ReportListParams) (*ReportPage, error) {
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid report status filter")
	}
	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListReports(ctx, listReportsParams{
		Status: params.Status,
		Cursor: cursor,
		Limit:  limit + 1,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reports")
	}

	page := &ReportPage{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) Resolve(ctx context.Context, adminID, reportID uuid.UUID, input ResolveInput) (*models.Report, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if input.Action != enums.ReportStatusActioned && input.Action != enums.ReportStatusDismissed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be actioned or dismissed")
	}

	report, err := s.repo.FindReportByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up report")
	}
	if report.Status != enums.ReportStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "report already resolved")
	}

	now := time.Now().UTC()
	report.Status = input.Action
	report.ResolvedByID = &adminID
	report.ResolutionNote = input.Note
	report.ResolvedAt = &now

	if err := s.repo.UpdateReport(ctx, report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving report")
	}

	if input.Action == enums.ReportStatusActioned && input.SuspendVendor {
		s.suspendReported(ctx, adminID, report)
	}
	s.notifyReporter(ctx, report)
	return report, nil
}

// suspendReported suspends the reported user's vendor profile when one
// exists. The report resolution is already committed; suspension failures
// are logged so an admin can retry through the vendor admin surface.
func (s *service) suspendReported(ctx context.Context, adminID uuid.UUID, report *models.Report) {
	if s.profiles == nil || s.vendors == nil {
		return
	}
	profile, err := s.profiles.FindByUserID(ctx, report.ReportedUserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && s.logg != nil {
			s.logg.Error(ctx, "looking up reported vendor profile", err)
		}
		return
	}
	reason := fmt.Sprintf("suspended after report: %s", report.Reason)
	if _, err := s.vendors.Apply(ctx, adminID, profile.ID, enums.VendorAdminActionSuspend, reason); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "suspending reported vendor", err)
		}
	}
}

func (s *service) notifyReporter(ctx context.Context, report *models.Report) {
	message := "Your report was reviewed and dismissed."
	if report.Status == enums.ReportStatusActioned {
		message = "Your report was reviewed and action was taken."
	}
	err := s.bus.Publish(ctx, events.Notify{
		UserID:   report.ReporterID,
		Type:     enums.NotificationTypeReportUpdate,
		Priority: enums.NotificationPriorityLow,
		Title:    "Report update",
		Message:  message,
	})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "report notification dispatch failed", err)
	}
}

func (s *service) requireUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up user")
	}
	return nil
}
