package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/rishtahub/rishta-backend/internal/moderation"
	"github.com/rishtahub/rishta-backend/pkg/db/models"
	"github.com/rishtahub/rishta-backend/pkg/enums"
)

type stubModeration struct {
	lastBlocker uuid.UUID
	lastBlocked uuid.UUID
	lastReport  moderation.ReportInput
	lastResolve moderation.ResolveInput
	blockErr    error
}

func (s *stubModeration) Block(ctx context.Context, blockerID, blockedUserID uuid.UUID) error {
	s.lastBlocker = blockerID
	s.lastBlocked = blockedUserID
	return s.blockErr
}

func (s *stubModeration) Unblock(ctx context.Context, blockerID, blockedUserID uuid.UUID) error {
	s.lastBlocker = blockerID
	s.lastBlocked = blockedUserID
	return nil
}

func (s *stubModeration) ListBlocks(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error) {
	return []models.Block{}, nil
}

func (s *stubModeration) IsBlockedEitherWay(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	return false, nil
}

func (s *stubModeration) Report(ctx context.Context, reporterID uuid.UUID, input moderation.ReportInput) (*models.Report, error) {
	s.lastReport = input
	return &models.Report{ReporterID: reporterID}, nil
}

func (s *stubModeration) ListReports(ctx context.Context, params moderation.ReportListParams) (*moderation.ReportPage, error) {
	return &moderation.ReportPage{}, nil
}

func (s *stubModeration) Resolve(ctx context.Context, adminID, reportID uuid.UUID, input moderation.ResolveInput) (*models.Report, error) {
	s.lastResolve = input
	return &models.Report{ID: reportID, Status: input.Action}, nil
}

func TestCreateBlock(t *testing.T) {
	svc := &stubModeration{}
	handler := CreateBlock(svc, testLogger())

	blocker := uuid.New()
	blocked := uuid.New()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, vendorRequest(http.MethodPost, "/blocks", `{"blocked_user_id":"`+blocked.String()+`"}`, blocker))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastBlocker != blocker || svc.lastBlocked != blocked {
		t.Fatalf("expected block %s -> %s got %s -> %s", blocker, blocked, svc.lastBlocker, svc.lastBlocked)
	}
}

func TestCreateBlockRejectsBadTarget(t *testing.T) {
	svc := &stubModeration{}
	handler := CreateBlock(svc, testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, vendorRequest(http.MethodPost, "/blocks", `{"blocked_user_id":"nope"}`, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.lastBlocked != uuid.Nil {
		t.Fatal("service must not be called with an invalid target")
	}
}

func TestCreateReport(t *testing.T) {
	svc := &stubModeration{}
	handler := CreateReport(svc, testLogger())

	reported := uuid.New()
	body := `{"reported_user_id":"` + reported.String() + `","reason":"fake profile"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, vendorRequest(http.MethodPost, "/reports", body, uuid.New()))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastReport.ReportedUserID != reported || svc.lastReport.Reason != "fake profile" {
		t.Fatalf("unexpected report input: %+v", svc.lastReport)
	}
}

func TestAdminResolveReport(t *testing.T) {
	svc := &stubModeration{}
	handler := AdminResolveReport(svc, testLogger())

	reportID := uuid.New()
	req := vendorRequest(http.MethodPost, "/reports/action", `{"action":"actioned","suspend_vendor":true}`, uuid.New())
	req = withPathParam(req, "reportId", reportID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastResolve.Action != enums.ReportStatusActioned || !svc.lastResolve.SuspendVendor {
		t.Fatalf("unexpected resolve input: %+v", svc.lastResolve)
	}
}
