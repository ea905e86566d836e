package domain

import "context"

// CustomerRepository persists customers.
type CustomerRepository interface {
	Create(ctx context.Context, c *Customer) (*Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page PageRequest) ([]Customer, int64, error)
}

// LotRepository persists product lots.
type LotRepository interface {
	Create(ctx context.Context, l *Lot) (*Lot, error)
	GetByID(ctx context.Context, id int64) (*Lot, error)
	Update(ctx context.Context, l *Lot) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter LotFilter) ([]Lot, int64, error)
}

// TestResultRepository persists lab test results.
type TestResultRepository interface {
	Create(ctx context.Context, t *TestResult) (*TestResult, error)
	GetByID(ctx context.Context, id int64) (*TestResult, error)
	Update(ctx context.Context, t *TestResult) error
	Delete(ctx context.Context, id int64) error
	ListForLot(ctx context.Context, lotID int64, page PageRequest) ([]TestResult, int64, error)
}

// TestMethodRepository persists the seeded test-method catalog.
type TestMethodRepository interface {
	Upsert(ctx context.Context, m *TestMethod) error
	GetByName(ctx context.Context, name string) (*TestMethod, error)
	List(ctx context.Context) ([]TestMethod, error)
}

// COARepository persists issued certificates.
type COARepository interface {
	Create(ctx context.Context, c *COA) (*COA, error)
	GetByID(ctx context.Context, id int64) (*COA, error)
	GetByLot(ctx context.Context, lotID int64) (*COA, error)
	List(ctx context.Context, page PageRequest) ([]COA, int64, error)
}

// AuditRepository persists and retrieves audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	GetByID(ctx context.Context, id int64) (*AuditEntry, error)
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
	// ListForRecord returns every entry for (tableName, recordID) ordered
	// by timestamp ascending, with annotation counts populated.
	ListForRecord(ctx context.Context, tableName string, recordID int64) ([]AuditEntry, error)
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}

// AnnotationRepository persists comments attached to audit entries.
type AnnotationRepository interface {
	Create(ctx context.Context, a *Annotation) (*Annotation, error)
	ListForEntry(ctx context.Context, auditID int64) ([]Annotation, error)
}
