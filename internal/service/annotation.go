package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/grbod/labtrack/internal/domain"
)

type AnnotationService struct {
	annotations domain.AnnotationRepository
	audit       domain.AuditRepository
}

func NewAnnotationService(annotations domain.AnnotationRepository, audit domain.AuditRepository) *AnnotationService {
	return &AnnotationService{annotations: annotations, audit: audit}
}

// Add attaches a comment to an existing audit entry. The author comes
// from the request principal; anonymous annotations are rejected.
func (s *AnnotationService) Add(ctx context.Context, auditID int64, body string) (*domain.Annotation, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrValidation("annotation body is required")
	}
	username := domain.UsernameFromContext(ctx)
	if username == "" {
		return nil, domain.ErrAccessDenied("annotations require an authenticated user")
	}
	if err := s.entryExists(ctx, auditID); err != nil {
		return nil, err
	}
	created, err := s.annotations.Create(ctx, &domain.Annotation{
		AuditID:  auditID,
		Username: username,
		Body:     body,
	})
	if err != nil {
		return nil, fmt.Errorf("create annotation: %w", err)
	}
	return created, nil
}

func (s *AnnotationService) ListForEntry(ctx context.Context, auditID int64) ([]domain.Annotation, error) {
	if err := s.entryExists(ctx, auditID); err != nil {
		return nil, err
	}
	return s.annotations.ListForEntry(ctx, auditID)
}

func (s *AnnotationService) entryExists(ctx context.Context, auditID int64) error {
	_, err := s.audit.GetByID(ctx, auditID)
	return err
}
