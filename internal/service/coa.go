package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/grbod/labtrack/internal/domain"
)

type COAService struct {
	coas     domain.COARepository
	results  domain.TestResultRepository
	lots     *LotService
	recorder *Recorder
	now      func() time.Time
}

func NewCOAService(
	coas domain.COARepository,
	results domain.TestResultRepository,
	lots *LotService,
	audit domain.AuditRepository,
	logger *slog.Logger,
) *COAService {
	return &COAService{
		coas:     coas,
		results:  results,
		lots:     lots,
		recorder: NewRecorder(audit, logger),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a Certificate of Analysis for an approved lot, snapshots
// its test results, and releases the lot. Pending or out-of-spec results
// block issuance.
func (s *COAService) Issue(ctx context.Context, lotID int64) (*domain.COA, error) {
	lot, err := s.lots.Get(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot.Status != domain.LotStatusApproved {
		return nil, domain.ErrConflict("lot %d is %s, only approved lots can be certified", lotID, lot.Status)
	}
	if _, err := s.coas.GetByLot(ctx, lotID); err == nil {
		return nil, domain.ErrConflict("lot %d already has a certificate", lotID)
	}

	results, _, err := s.results.ListForLot(ctx, lotID, domain.PageRequest{MaxResults: domain.MaxMaxResults})
	if err != nil {
		return nil, fmt.Errorf("list test results for lot %d: %w", lotID, err)
	}
	if len(results) == 0 {
		return nil, domain.ErrValidation("lot %d has no test results", lotID)
	}

	snapshot := make([]domain.COAResult, 0, len(results))
	for _, r := range results {
		switch r.Status {
		case domain.TestStatusPending:
			return nil, domain.ErrValidation("test %q is still pending", r.TestType)
		case domain.TestStatusOutOfSpec:
			return nil, domain.ErrValidation("test %q is out of specification", r.TestType)
		}
		snapshot = append(snapshot, domain.COAResult{
			TestType:    r.TestType,
			ResultValue: r.ResultValue,
			Unit:        r.Unit,
			Method:      r.Method,
			Status:      r.Status,
		})
	}

	issuedAt := s.now()
	coa := &domain.COA{
		Number:   coaNumber(issuedAt),
		LotID:    lotID,
		IssuedBy: domain.UsernameFromContext(ctx),
		IssuedAt: issuedAt,
		Results:  snapshot,
	}
	created, err := s.coas.Create(ctx, coa)
	if err != nil {
		return nil, fmt.Errorf("create coa: %w", err)
	}

	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName: tableCOAs,
		RecordID:  created.ID,
		Action:    domain.ActionInsert,
		Changes: []domain.FieldChange{
			{Field: "Number", NewValue: created.Number},
			{Field: "Lot", NewValue: lot.LotNumber},
		},
		Reason: fmt.Sprintf("Certified %d test results", len(snapshot)),
	})
	if err := s.lots.markReleased(ctx, lot, created.Number); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *COAService) Get(ctx context.Context, id int64) (*domain.COA, error) {
	return s.coas.GetByID(ctx, id)
}

func (s *COAService) GetForLot(ctx context.Context, lotID int64) (*domain.COA, error) {
	return s.coas.GetByLot(ctx, lotID)
}

func (s *COAService) List(ctx context.Context, page domain.PageRequest) ([]domain.COA, int64, error) {
	return s.coas.List(ctx, page)
}

// coaNumber builds an identifier like COA-2026-3f1a9c2e: issue year plus
// a short random suffix.
func coaNumber(issuedAt time.Time) string {
	return fmt.Sprintf("COA-%d-%s", issuedAt.Year(), uuid.NewString()[:8])
}
