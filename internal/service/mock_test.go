package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/grbod/labtrack/internal/domain"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// memAuditRepo captures recorded audit entries in memory so tests can
// assert on what the services wrote.
type memAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	nextID  int64
}

func (m *memAuditRepo) Insert(_ context.Context, e *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memAuditRepo) GetByID(_ context.Context, id int64) (*domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == id {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound("audit entry %d not found", id)
}

func (m *memAuditRepo) List(_ context.Context, _ domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditEntry, len(m.entries))
	copy(out, m.entries)
	return out, int64(len(out)), nil
}

func (m *memAuditRepo) ListForRecord(_ context.Context, tableName string, recordID int64) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range m.entries {
		if e.TableName == tableName && e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAuditRepo) PurgeOlderThan(_ context.Context, _ int) (int64, error) {
	return 0, nil
}

// forTable filters captured entries by table name.
func (m *memAuditRepo) forTable(table string) []domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range m.entries {
		if e.TableName == table {
			out = append(out, e)
		}
	}
	return out
}

// memAnnotationRepo stores annotations in memory.
type memAnnotationRepo struct {
	mu          sync.Mutex
	annotations []domain.Annotation
	nextID      int64
}

func (m *memAnnotationRepo) Create(_ context.Context, a *domain.Annotation) (*domain.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	m.annotations = append(m.annotations, *a)
	out := *a
	return &out, nil
}

func (m *memAnnotationRepo) ListForEntry(_ context.Context, auditID int64) ([]domain.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Annotation
	for _, a := range m.annotations {
		if a.AuditID == auditID {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockTestMethodRepo struct {
	UpsertFn    func(ctx context.Context, m *domain.TestMethod) error
	GetByNameFn func(ctx context.Context, name string) (*domain.TestMethod, error)
	ListFn      func(ctx context.Context) ([]domain.TestMethod, error)
}

func (m *mockTestMethodRepo) Upsert(ctx context.Context, tm *domain.TestMethod) error {
	return m.UpsertFn(ctx, tm)
}
func (m *mockTestMethodRepo) GetByName(ctx context.Context, name string) (*domain.TestMethod, error) {
	return m.GetByNameFn(ctx, name)
}
func (m *mockTestMethodRepo) List(ctx context.Context) ([]domain.TestMethod, error) {
	return m.ListFn(ctx)
}

// lotStore is a tiny in-memory LotRepository used where tests need
// stateful lot transitions rather than per-call stubs.
type lotStore struct {
	mu     sync.Mutex
	lots   map[int64]domain.Lot
	nextID int64
}

func newLotStore() *lotStore {
	return &lotStore{lots: make(map[int64]domain.Lot)}
}

func (s *lotStore) Create(_ context.Context, l *domain.Lot) (*domain.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	l.ID = s.nextID
	s.lots[l.ID] = *l
	out := *l
	return &out, nil
}

func (s *lotStore) GetByID(_ context.Context, id int64) (*domain.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lots[id]
	if !ok {
		return nil, domain.ErrNotFound("lot %d not found", id)
	}
	out := l
	return &out, nil
}

func (s *lotStore) Update(_ context.Context, l *domain.Lot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lots[l.ID]; !ok {
		return domain.ErrNotFound("lot %d not found", l.ID)
	}
	s.lots[l.ID] = *l
	return nil
}

func (s *lotStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lots, id)
	return nil
}

func (s *lotStore) List(_ context.Context, _ domain.LotFilter) ([]domain.Lot, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Lot, 0, len(s.lots))
	for _, l := range s.lots {
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}
