package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grbod/labtrack/internal/domain"
)

// Audited table names as they appear in audit entries.
const (
	tableCustomers   = "customers"
	tableLots        = "lots"
	tableTestResults = "test_results"
	tableCOAs        = "coas"
)

type CustomerService struct {
	customers domain.CustomerRepository
	recorder  *Recorder
}

func NewCustomerService(customers domain.CustomerRepository, audit domain.AuditRepository, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		customers: customers,
		recorder:  NewRecorder(audit, logger),
	}
}

func (s *CustomerService) Create(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	if c.Name == "" {
		return nil, domain.ErrValidation("customer name is required")
	}
	created, err := s.customers.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	cs := &changeSet{}
	cs.initial("Name", created.Name)
	cs.initial("Email", created.Email)
	cs.initial("Phone", created.Phone)
	cs.initial("Address", created.Address)
	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName: tableCustomers,
		RecordID:  created.ID,
		Action:    domain.ActionInsert,
		Changes:   cs.changes,
	})
	return created, nil
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, page domain.PageRequest) ([]domain.Customer, int64, error) {
	return s.customers.List(ctx, page)
}

func (s *CustomerService) Update(ctx context.Context, id int64, in *domain.Customer, reason string) (*domain.Customer, error) {
	current, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cs := &changeSet{}
	cs.str("Name", current.Name, in.Name)
	cs.str("Email", current.Email, in.Email)
	cs.str("Phone", current.Phone, in.Phone)
	cs.str("Address", current.Address, in.Address)

	current.Name = in.Name
	current.Email = in.Email
	current.Phone = in.Phone
	current.Address = in.Address
	if err := s.customers.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}

	if !cs.empty() {
		s.recorder.Record(ctx, &domain.AuditEntry{
			TableName: tableCustomers,
			RecordID:  id,
			Action:    domain.ActionUpdate,
			Changes:   cs.changes,
			Reason:    reason,
		})
	}
	return current, nil
}

func (s *CustomerService) Delete(ctx context.Context, id int64, reason string) error {
	if _, err := s.customers.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.customers.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName: tableCustomers,
		RecordID:  id,
		Action:    domain.ActionDelete,
		Reason:    reason,
	})
	return nil
}
