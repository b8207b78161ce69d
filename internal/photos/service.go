package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	pkgerrors "github.com/rishtahub/rishta-backend/pkg/errors"
	"github.com/rishtahub/rishta-backend/pkg/events"
	"github.com/rishtahub/rishta-backend/pkg/logger"
	"github.com/rishtahub/rishta-backend/pkg/storage"
)

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type photosRepository interface {
	Create(ctx context.Context, photo *models.Photo) (*models.Photo, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Photo, error)
	UpdateVisibility(ctx context.Context, id uuid.UUID, visibility enums.PhotoVisibility) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CreateAccessRequest(ctx context.Context, request *models.PhotoAccessRequest) (*models.PhotoAccessRequest, error)
	FindAccessRequestByID(ctx context.Context, id uuid.UUID) (*models.PhotoAccessRequest, error)
	UpdateAccessRequest(ctx context.Context, request *models.PhotoAccessRequest) error
	HasGrantedAccess(ctx context.Context, ownerID, requesterID uuid.UUID) (bool, error)
}

type objectStore interface {
	Put(ctx context.Context, key string, r io.Reader) (storage.ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type blockChecker interface {
	IsBlockedEitherWay(ctx context.Context, userA, userB uuid.UUID) (bool, error)
}

type connectionChecker interface {
	HasConfirmedBetween(ctx context.Context, userA, userB uuid.UUID) (bool, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// UploadInput carries one multipart photo upload.
type UploadInput struct {
	FileName   string
	MimeType   string
	Visibility enums.PhotoVisibility
	IsProfile  bool
	Body       io.Reader
}

// Service manages photo uploads, visibility tiers, and access requests.
type Service interface {
	Upload(ctx context.Context, ownerID uuid.UUID, input UploadInput) (*models.Photo, error)
	Open(ctx context.Context, viewerID, photoID uuid.UUID) (*models.Photo, io.ReadCloser, error)
	ListVisible(ctx context.Context, viewerID, ownerID uuid.UUID) ([]models.Photo, error)
	UpdateVisibility(ctx context.Context, ownerID, photoID uuid.UUID, visibility enums.PhotoVisibility) error
	Delete(ctx context.Context, ownerID, photoID uuid.UUID) error
	RequestAccess(ctx context.Context, requesterID, photoID uuid.UUID) (*models.PhotoAccessRequest, error)
	Grant(ctx context.Context, ownerID, requestID uuid.UUID) (*models.PhotoAccessRequest, error)
	Deny(ctx context.Context, ownerID, requestID uuid.UUID) (*models.PhotoAccessRequest, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo        photosRepository
	Store       objectStore
	Blocks      blockChecker
	Connections connectionChecker
	Bus         eventPublisher
	Logger      *logger.Logger
}

type service struct {
	repo        photosRepository
	store       objectStore
	blocks      blockChecker
	connections connectionChecker
	bus         eventPublisher
	logg        *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("photos repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if params.Blocks == nil {
		return nil, fmt.Errorf("block checker required")
	}
	if params.Connections == nil {
		return nil, fmt.Errorf("connection checker required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	return &service{
		repo:        params.Repo,
		store:       params.Store,
		blocks:      params.Blocks,
		connections: params.Connections,
		bus:         params.Bus,
		logg:        params.Logger,
	}, nil
}

func (s *service) Upload(ctx context.Context, ownerID uuid.UUID, input UploadInput) (*models.Photo, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file content is required")
	}
	if _, ok := allowedMimeTypes[input.MimeType]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type").
			WithDetails(map[string]any{"mime_type": input.MimeType})
	}
	visibility := input.Visibility
	if visibility == "" {
		visibility = enums.PhotoVisibilityRequest
	}
	if !visibility.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid photo visibility")
	}

	key := fmt.Sprintf("photos/%s/%s", ownerID, uuid.NewString())
	info, err := s.store.Put(ctx, key, input.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing photo")
	}

	photo := &models.Photo{
		OwnerID:    ownerID,
		ObjectKey:  key,
		FileName:   input.FileName,
		MimeType:   input.MimeType,
		SizeBytes:  info.SizeBytes,
		Visibility: visibility,
		IsProfile:  input.IsProfile,
	}
	created, err := s.repo.Create(ctx, photo)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil && s.logg != nil {
			s.logg.Error(ctx, "removing blob after failed insert", delErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving photo")
	}
	return created, nil
}

func (s *service) Open(ctx context.Context, viewerID, photoID uuid.UUID) (*models.Photo, io.ReadCloser, error) {
	photo, err := s.findPhoto(ctx, photoID)
	if err != nil {
		return nil, nil, err
	}
	allowed, err := s.canView(ctx, viewerID, photo)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "photo is not visible to you")
	}

	body, err := s.store.Get(ctx, photo.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading photo")
	}
	return photo, body, nil
}

func (s *service) ListVisible(ctx context.Context, viewerID, ownerID uuid.UUID) ([]models.Photo, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	photos, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing photos")
	}

	visible := make([]models.Photo, 0, len(photos))
	for i := range photos {
		allowed, err := s.canView(ctx, viewerID, &photos[i])
		if err != nil {
			return nil, err
		}
		if allowed {
			visible = append(visible, photos[i])
		}
	}
	return visible, nil
}

func (s *service) UpdateVisibility(ctx context.Context, ownerID, photoID uuid.UUID, visibility enums.PhotoVisibility) error {
	if !visibility.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid photo visibility")
	}
	photo, err := s.findPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if photo.OwnerID != ownerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "photo belongs to another user")
	}
	found, err := s.repo.UpdateVisibility(ctx, photoID, visibility)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating photo visibility")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, ownerID, photoID uuid.UUID) error {
	photo, err := s.findPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if photo.OwnerID != ownerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "photo belongs to another user")
	}
	if err := s.repo.Delete(ctx, photoID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting photo")
	}
	if err := s.store.Delete(ctx, photo.ObjectKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		if s.logg != nil {
			s.logg.Error(ctx, "removing photo blob", err)
		}
	}
	return nil
}

func (s *service) RequestAccess(ctx context.Context, requesterID, photoID uuid.UUID) (*models.PhotoAccessRequest, error) {
	if requesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	photo, err := s.findPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo.OwnerID == requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot request access to your own photo")
	}
	if photo.Visibility == enums.PhotoVisibilityPublic {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "photo is already public")
	}

	blocked, err := s.blocks.IsBlockedEitherWay(ctx, requesterID, photo.OwnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking blocks")
	}
	if blocked {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access request not permitted")
	}

	granted, err := s.repo.HasGrantedAccess(ctx, photo.OwnerID, requesterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking granted access")
	}
	if granted {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "access already granted")
	}

	// One pending request per (owner, requester) pair, enforced by the
	// partial unique index.
	request := &models.PhotoAccessRequest{
		OwnerID:     photo.OwnerID,
		RequesterID: requesterID,
		Status:      enums.AccessRequestStatusPending,
	}
	created, err := s.repo.CreateAccessRequest(ctx, request)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "access request already pending")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating access request")
	}

	s.notify(ctx, photo.OwnerID, "Photo access request",
		"Someone asked to view your private photos.")
	return created, nil
}

func (s *service) Grant(ctx context.Context, ownerID, requestID uuid.UUID) (*models.PhotoAccessRequest, error) {
	return s.decide(ctx, ownerID, requestID, enums.AccessRequestStatusGranted)
}

func (s *service) Deny(ctx context.Context, ownerID, requestID uuid.UUID) (*models.PhotoAccessRequest, error) {
	return s.decide(ctx, ownerID, requestID, enums.AccessRequestStatusDenied)
}

func (s *service) decide(ctx context.Context, ownerID, requestID uuid.UUID, status enums.AccessRequestStatus) (*models.PhotoAccessRequest, error) {
	request, err := s.repo.FindAccessRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "access request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up access request")
	}
	if request.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access request belongs to another user")
	}
	if request.Status != enums.AccessRequestStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "access request already decided")
	}

	now := time.Now().UTC()
	request.Status = status
	request.DecidedAt = &now
	if err := s.repo.UpdateAccessRequest(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving access request")
	}

	message := "Your photo access request was denied."
	if status == enums.AccessRequestStatusGranted {
		message = "Your photo access request was granted."
	}
	s.notify(ctx, request.RequesterID, "Photo access update", message)
	return request, nil
}

// canView applies the visibility tiers. Owners always see their own
// photos; blocked pairs see nothing beyond public.
func (s *service) canView(ctx context.Context, viewerID uuid.UUID, photo *models.Photo) (bool, error) {
	if viewerID == photo.OwnerID {
		return true, nil
	}
	if photo.Visibility == enums.PhotoVisibilityPublic {
		return true, nil
	}
	if viewerID == uuid.Nil {
		return false, nil
	}

	blocked, err := s.blocks.IsBlockedEitherWay(ctx, viewerID, photo.OwnerID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking blocks")
	}
	if blocked {
		return false, nil
	}

	switch photo.Visibility {
	case enums.PhotoVisibilityConnections:
		connected, err := s.connections.HasConfirmedBetween(ctx, viewerID, photo.OwnerID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking connection")
		}
		return connected, nil
	case enums.PhotoVisibilityRequest:
		granted, err := s.repo.HasGrantedAccess(ctx, photo.OwnerID, viewerID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking granted access")
		}
		return granted, nil
	default:
		return false, nil
	}
}

func (s *service) findPhoto(ctx context.Context, photoID uuid.UUID) (*models.Photo, error) {
	if photoID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo id is required")
	}
	photo, err := s.repo.FindByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up photo")
	}
	return photo, nil
}

func (s *service) notify(ctx context.Context, userID uuid.UUID, title, message string) {
	err := s.bus.Publish(ctx, events.Notify{
		UserID:   userID,
		Type:     enums.NotificationTypePhotoAccess,
		Priority: enums.NotificationPriorityLow,
		Title:    title,
		Message:  message,
	})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "photo notification dispatch failed", err)
	}
}
