package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/grbod/labtrack/internal/audittrail"
	"github.com/grbod/labtrack/internal/domain"
)

// TestResultInput is the caller-supplied shape for creating a test
// result. Unset unit/method/spec fields are filled from the method
// catalog entry matching TestType, when one exists.
type TestResultInput struct {
	TestType    string
	ResultValue string
	Unit        string
	Method      string
	SpecMin     *float64
	SpecMax     *float64
	Analyst     string
	TestedAt    *time.Time
}

type TestResultService struct {
	results  domain.TestResultRepository
	methods  domain.TestMethodRepository
	lots     *LotService
	recorder *Recorder
}

func NewTestResultService(
	results domain.TestResultRepository,
	methods domain.TestMethodRepository,
	lots *LotService,
	audit domain.AuditRepository,
	logger *slog.Logger,
) *TestResultService {
	return &TestResultService{
		results:  results,
		methods:  methods,
		lots:     lots,
		recorder: NewRecorder(audit, logger),
	}
}

func (s *TestResultService) Create(ctx context.Context, lotID int64, in TestResultInput) (*domain.TestResult, error) {
	if in.TestType == "" {
		return nil, domain.ErrValidation("test type is required")
	}
	lot, err := s.lots.Get(ctx, lotID)
	if err != nil {
		return nil, err
	}
	switch lot.Status {
	case domain.LotStatusReleased, domain.LotStatusRejected:
		return nil, domain.ErrConflict("lot %d is %s and cannot receive test results", lotID, lot.Status)
	}

	tr := &domain.TestResult{
		LotID:       lotID,
		TestType:    in.TestType,
		ResultValue: in.ResultValue,
		Unit:        in.Unit,
		Method:      in.Method,
		SpecMin:     in.SpecMin,
		SpecMax:     in.SpecMax,
		Analyst:     in.Analyst,
		TestedAt:    in.TestedAt,
	}
	s.applyCatalogDefaults(ctx, tr)
	tr.Status = evaluateStatus(tr)

	created, err := s.results.Create(ctx, tr)
	if err != nil {
		return nil, fmt.Errorf("create test result: %w", err)
	}

	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName: tableTestResults,
		RecordID:  created.ID,
		Action:    domain.ActionInsert,
		Changes:   creationChanges(created),
		Reason:    "Test result created: " + created.TestType,
	})
	if created.Status == domain.TestStatusOutOfSpec {
		s.recordOutOfSpec(ctx, created)
	}
	if err := s.lots.markInTesting(ctx, lot); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *TestResultService) Get(ctx context.Context, id int64) (*domain.TestResult, error) {
	return s.results.GetByID(ctx, id)
}

func (s *TestResultService) ListForLot(ctx context.Context, lotID int64, page domain.PageRequest) ([]domain.TestResult, int64, error) {
	if _, err := s.lots.Get(ctx, lotID); err != nil {
		return nil, 0, err
	}
	return s.results.ListForLot(ctx, lotID, page)
}

func (s *TestResultService) Update(ctx context.Context, id int64, upd domain.TestResultUpdate, reason string) (*domain.TestResult, error) {
	current, err := s.results.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lot, err := s.lots.Get(ctx, current.LotID)
	if err != nil {
		return nil, err
	}
	if lot.Status == domain.LotStatusReleased {
		return nil, domain.ErrConflict("lot %d is released, its test results are frozen", lot.ID)
	}

	label := func(sub string) string { return current.TestType + audittrail.FieldSeparator + sub }
	cs := &changeSet{}
	if upd.ResultValue != nil {
		cs.str(label("Result Value"), current.ResultValue, *upd.ResultValue)
		current.ResultValue = *upd.ResultValue
	}
	if upd.Unit != nil {
		cs.str(label("Unit"), current.Unit, *upd.Unit)
		current.Unit = *upd.Unit
	}
	if upd.Method != nil {
		cs.str(label("Method"), current.Method, *upd.Method)
		current.Method = *upd.Method
	}
	if upd.SpecMin != nil {
		cs.floatPtr(label("Spec Min"), current.SpecMin, upd.SpecMin)
		current.SpecMin = upd.SpecMin
	}
	if upd.SpecMax != nil {
		cs.floatPtr(label("Spec Max"), current.SpecMax, upd.SpecMax)
		current.SpecMax = upd.SpecMax
	}
	if upd.Analyst != nil {
		cs.str(label("Analyst"), current.Analyst, *upd.Analyst)
		current.Analyst = *upd.Analyst
	}
	if upd.TestedAt != nil {
		old := ""
		if current.TestedAt != nil {
			old = current.TestedAt.UTC().Format(time.RFC3339)
		}
		cs.str(label("Tested At"), old, upd.TestedAt.UTC().Format(time.RFC3339))
		current.TestedAt = upd.TestedAt
	}

	oldStatus := current.Status
	current.Status = evaluateStatus(current)
	cs.str(label("Status"), oldStatus, current.Status)

	if err := s.results.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("update test result %d: %w", id, err)
	}
	if !cs.empty() {
		s.recorder.Record(ctx, &domain.AuditEntry{
			TableName: tableTestResults,
			RecordID:  id,
			Action:    domain.ActionUpdate,
			Changes:   cs.changes,
			Reason:    reason,
		})
	}
	if oldStatus != domain.TestStatusOutOfSpec && current.Status == domain.TestStatusOutOfSpec {
		s.recordOutOfSpec(ctx, current)
	}
	return current, nil
}

func (s *TestResultService) Delete(ctx context.Context, id int64, reason string) error {
	current, err := s.results.GetByID(ctx, id)
	if err != nil {
		return err
	}
	lot, err := s.lots.Get(ctx, current.LotID)
	if err != nil {
		return err
	}
	if lot.Status == domain.LotStatusReleased {
		return domain.ErrConflict("lot %d is released, its test results are frozen", lot.ID)
	}
	if err := s.results.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete test result %d: %w", id, err)
	}
	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName: tableTestResults,
		RecordID:  id,
		Action:    domain.ActionDelete,
		Reason:    reason,
	})
	return nil
}

// BulkImport creates a batch of test results against one lot. Each
// result gets its own creation entry; the lot additionally gets a single
// bulk entry summarizing the import.
func (s *TestResultService) BulkImport(ctx context.Context, lotID int64, inputs []TestResultInput) ([]domain.TestResult, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrValidation("bulk import requires at least one test result")
	}
	created := make([]domain.TestResult, 0, len(inputs))
	for i, in := range inputs {
		tr, err := s.Create(ctx, lotID, in)
		if err != nil {
			return nil, fmt.Errorf("bulk import row %d: %w", i+1, err)
		}
		created = append(created, *tr)
	}
	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName:       tableLots,
		RecordID:        lotID,
		Action:          domain.ActionInsert,
		IsBulkOperation: true,
		BulkSummary:     fmt.Sprintf("Imported %d test results", len(created)),
	})
	return created, nil
}

// applyCatalogDefaults fills unset unit, method, and spec bounds from
// the method catalog. Missing catalog entries are not an error; ad hoc
// test types stay as supplied.
func (s *TestResultService) applyCatalogDefaults(ctx context.Context, tr *domain.TestResult) {
	if s.methods == nil {
		return
	}
	m, err := s.methods.GetByName(ctx, tr.TestType)
	if err != nil {
		return
	}
	if tr.Unit == "" {
		tr.Unit = m.Unit
	}
	if tr.Method == "" {
		tr.Method = m.Method
	}
	if tr.SpecMin == nil {
		tr.SpecMin = m.SpecMin
	}
	if tr.SpecMax == nil {
		tr.SpecMax = m.SpecMax
	}
}

func (s *TestResultService) recordOutOfSpec(ctx context.Context, tr *domain.TestResult) {
	s.recorder.Record(ctx, &domain.AuditEntry{
		TableName: tableTestResults,
		RecordID:  tr.ID,
		Action:    domain.ActionValidationFailed,
		Changes: []domain.FieldChange{{
			Field:    tr.TestType + audittrail.FieldSeparator + "Result Value",
			NewValue: tr.ResultValue,
		}},
		Reason: fmt.Sprintf("Result %s outside specification [%s, %s]",
			tr.ResultValue, orUnbounded(tr.SpecMin), orUnbounded(tr.SpecMax)),
	})
}

// creationChanges builds the full field set recorded on a new test
// result. Labels carry the test type prefix so trail views can group
// them under the test.
func creationChanges(tr *domain.TestResult) []domain.FieldChange {
	label := func(sub string) string { return tr.TestType + audittrail.FieldSeparator + sub }
	cs := &changeSet{}
	cs.initial(label("Result Value"), tr.ResultValue)
	cs.initial(label("Unit"), tr.Unit)
	cs.initial(label("Method"), tr.Method)
	cs.initial(label("Spec Min"), formatFloatPtr(tr.SpecMin))
	cs.initial(label("Spec Max"), formatFloatPtr(tr.SpecMax))
	cs.initial(label("Analyst"), tr.Analyst)
	cs.initial(label("Status"), tr.Status)
	return cs.changes
}

// evaluateStatus derives a result's status from its value and spec
// bounds. Non-numeric values and unbounded tests stay complete once a
// value exists; an empty value means the test is still pending.
func evaluateStatus(tr *domain.TestResult) string {
	if tr.ResultValue == "" {
		return domain.TestStatusPending
	}
	v, err := strconv.ParseFloat(tr.ResultValue, 64)
	if err != nil {
		return domain.TestStatusComplete
	}
	if tr.SpecMin != nil && v < *tr.SpecMin {
		return domain.TestStatusOutOfSpec
	}
	if tr.SpecMax != nil && v > *tr.SpecMax {
		return domain.TestStatusOutOfSpec
	}
	return domain.TestStatusComplete
}

func orUnbounded(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
