package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/grbod/labtrack/internal/domain"
)

type LotService struct {
	lots     domain.LotRepository
	recorder *Recorder
}

func NewLotService(lots domain.LotRepository, audit domain.AuditRepository, logger *slog.Logger) *LotService {
	return &LotService{
		lots:     lots,
		recorder: NewRecorder(audit, logger),
	}
}

func (s *LotService) Create(ctx context.Context, l *domain.Lot) (*domain.Lot, error) {
	if l.LotNumber == "" {
		return nil, domain.ErrValidation("lot number is required")
	}
	if l.ProductName == "" {
		return nil, domain.ErrValidation("product name is required")
	}
	l.Status = domain.LotStatusPending
	created, err := s.lots.Create(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("create lot: %w", err)
	}

	cs := &changeSet{}
	cs.initial("Lot Number", created.LotNumber)
	cs.initial("Product Name", created.ProductName)
	if created.Quantity != 0 {
		cs.initial("Quantity", formatQuantity(created.Quantity, created.Unit))
	}
	if created.CustomerID != nil {
		cs.initial("Customer", strconv.FormatInt(*created.CustomerID, 10))
	}
	if created.ManufactureDate != nil {
		cs.initial("Manufacture Date", created.ManufactureDate.UTC().Format("2006-01-02"))
	}
	if created.ExpiryDate != nil {
		cs.initial("Expiry Date", created.ExpiryDate.UTC().Format("2006-01-02"))
	}
	cs.initial("Notes", created.Notes)
	cs.initial("Status", created.Status)

	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName: tableLots,
		RecordID:  created.ID,
		Action:    domain.ActionInsert,
		Changes:   cs.changes,
	})
	return created, nil
}

func (s *LotService) Get(ctx context.Context, id int64) (*domain.Lot, error) {
	return s.lots.GetByID(ctx, id)
}

func (s *LotService) List(ctx context.Context, filter domain.LotFilter) ([]domain.Lot, int64, error) {
	return s.lots.List(ctx, filter)
}

func (s *LotService) Update(ctx context.Context, id int64, upd domain.LotUpdate, reason string) (*domain.Lot, error) {
	current, err := s.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.LotStatusReleased {
		return nil, domain.ErrValidation("released lots cannot be modified")
	}

	cs := &changeSet{}
	if upd.ProductName != nil {
		cs.str("Product Name", current.ProductName, *upd.ProductName)
		current.ProductName = *upd.ProductName
	}
	if upd.Quantity != nil || upd.Unit != nil {
		q, u := current.Quantity, current.Unit
		if upd.Quantity != nil {
			q = *upd.Quantity
		}
		if upd.Unit != nil {
			u = *upd.Unit
		}
		cs.str("Quantity", formatQuantity(current.Quantity, current.Unit), formatQuantity(q, u))
		current.Quantity, current.Unit = q, u
	}
	if upd.CustomerID != nil {
		oldID := ""
		if current.CustomerID != nil {
			oldID = strconv.FormatInt(*current.CustomerID, 10)
		}
		cs.str("Customer", oldID, strconv.FormatInt(*upd.CustomerID, 10))
		current.CustomerID = upd.CustomerID
	}
	if upd.ManufactureDate != nil {
		cs.str("Manufacture Date", formatDatePtr(current.ManufactureDate), upd.ManufactureDate.UTC().Format("2006-01-02"))
		current.ManufactureDate = upd.ManufactureDate
	}
	if upd.ExpiryDate != nil {
		cs.str("Expiry Date", formatDatePtr(current.ExpiryDate), upd.ExpiryDate.UTC().Format("2006-01-02"))
		current.ExpiryDate = upd.ExpiryDate
	}
	if upd.Notes != nil {
		cs.str("Notes", current.Notes, *upd.Notes)
		current.Notes = *upd.Notes
	}

	if err := s.lots.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("update lot %d: %w", id, err)
	}
	if !cs.empty() {
		s.recorder.Record(ctx, &domain.AuditEntry{
			TableName: tableLots,
			RecordID:  id,
			Action:    domain.ActionUpdate,
			Changes:   cs.changes,
			Reason:    reason,
		})
	}
	return current, nil
}

// Approve moves a lot from in_testing to approved.
func (s *LotService) Approve(ctx context.Context, id int64, reason string) (*domain.Lot, error) {
	return s.transition(ctx, id, domain.LotStatusInTesting, domain.LotStatusApproved, domain.ActionApprove, reason)
}

// Reject moves a lot from in_testing to rejected.
func (s *LotService) Reject(ctx context.Context, id int64, reason string) (*domain.Lot, error) {
	return s.transition(ctx, id, domain.LotStatusInTesting, domain.LotStatusRejected, domain.ActionReject, reason)
}

func (s *LotService) transition(ctx context.Context, id int64, from, to string, action domain.AuditAction, reason string) (*domain.Lot, error) {
	lot, err := s.lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot.Status != from {
		return nil, domain.ErrConflict("lot %d is %s, expected %s", id, lot.Status, from)
	}
	old := lot.Status
	lot.Status = to
	if err := s.lots.Update(ctx, lot); err != nil {
		return nil, fmt.Errorf("update lot %d status: %w", id, err)
	}
	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName: tableLots,
		RecordID:  id,
		Action:    action,
		Changes:   []domain.FieldChange{{Field: "Status", OldValue: old, NewValue: to}},
		Reason:    reason,
	})
	return lot, nil
}

// markReleased flips an approved lot to released. Called from COA
// issuance; the status change rides an update entry so the trail shows
// the release as a field transition.
func (s *LotService) markReleased(ctx context.Context, lot *domain.Lot, coaNumber string) error {
	old := lot.Status
	lot.Status = domain.LotStatusReleased
	if err := s.lots.Update(ctx, lot); err != nil {
		return fmt.Errorf("update lot %d status: %w", lot.ID, err)
	}
	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName: tableLots,
		RecordID:  lot.ID,
		Action:    domain.ActionUpdate,
		Changes:   []domain.FieldChange{{Field: "Status", OldValue: old, NewValue: domain.LotStatusReleased}},
		Reason:    "Released under " + coaNumber,
	})
	return nil
}

// markInTesting flips a pending lot to in_testing when its first test
// result arrives. No-op for lots already past pending.
func (s *LotService) markInTesting(ctx context.Context, lot *domain.Lot) error {
	if lot.Status != domain.LotStatusPending {
		return nil
	}
	lot.Status = domain.LotStatusInTesting
	if err := s.lots.Update(ctx, lot); err != nil {
		return fmt.Errorf("update lot %d status: %w", lot.ID, err)
	}
	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName: tableLots,
		RecordID:  lot.ID,
		Action:    domain.ActionUpdate,
		Changes: []domain.FieldChange{{
			Field:    "Status",
			OldValue: domain.LotStatusPending,
			NewValue: domain.LotStatusInTesting,
		}},
	})
	return nil
}

func (s *LotService) Delete(ctx context.Context, id int64, reason string) error {
	lot, err := s.lots.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if lot.Status == domain.LotStatusReleased {
		return domain.ErrValidation("released lots cannot be deleted")
	}
	if err := s.lots.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete lot %d: %w", id, err)
	}
	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName: tableLots,
		RecordID:  id,
		Action:    domain.ActionDelete,
		Reason:    reason,
	})
	return nil
}

func formatQuantity(q float64, unit string) string {
	v := strconv.FormatFloat(q, 'f', -1, 64)
	if unit == "" {
		return v
	}
	return v + " " + unit
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
