package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grbod/labtrack/internal/domain"
)

type coaStore struct {
	mu     sync.Mutex
	coas   map[int64]domain.COA
	nextID int64
}

func newCOAStore() *coaStore { return &coaStore{coas: make(map[int64]domain.COA)} }

func (s *coaStore) Create(_ context.Context, c *domain.COA) (*domain.COA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.coas[c.ID] = *c
	out := *c
	return &out, nil
}

func (s *coaStore) GetByID(_ context.Context, id int64) (*domain.COA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coas[id]
	if !ok {
		return nil, domain.ErrNotFound("coa %d not found", id)
	}
	out := c
	return &out, nil
}

func (s *coaStore) GetByLot(_ context.Context, lotID int64) (*domain.COA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.coas {
		if c.LotID == lotID {
			out := c
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound("no coa for lot %d", lotID)
}

func (s *coaStore) List(_ context.Context, _ domain.PageRequest) ([]domain.COA, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.COA, 0, len(s.coas))
	for _, c := range s.coas {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

type coaFixture struct {
	svc     *COAService
	lots    *LotService
	results *resultStore
	audit   *memAuditRepo
	lotID   int64
}

func newCOAFixture(t *testing.T, lotStatus string, results []domain.TestResult) *coaFixture {
	t.Helper()
	audit := &memAuditRepo{}
	lotStore := newLotStore()
	lots := NewLotService(lotStore, audit, discardLogger())
	lot, err := lots.Create(authedCtx("alice"), &domain.Lot{LotNumber: "L1", ProductName: "Whey"})
	require.NoError(t, err)
	lot.Status = lotStatus
	require.NoError(t, lotStore.Update(context.Background(), lot))

	store := newResultStore()
	for i := range results {
		results[i].LotID = lot.ID
		_, err := store.Create(context.Background(), &results[i])
		require.NoError(t, err)
	}
	return &coaFixture{
		svc:     NewCOAService(newCOAStore(), store, lots, audit, discardLogger()),
		lots:    lots,
		results: store,
		audit:   audit,
		lotID:   lot.ID,
	}
}

func TestCOAService_Issue(t *testing.T) {
	t.Parallel()

	t.Run("issues certificate and releases lot", func(t *testing.T) {
		t.Parallel()
		f := newCOAFixture(t, domain.LotStatusApproved, []domain.TestResult{
			{TestType: "Lead", ResultValue: "0.3", Unit: "ppm", Method: "ICP-MS", Status: domain.TestStatusComplete},
			{TestType: "Arsenic", ResultValue: "0.1", Unit: "ppm", Method: "ICP-MS", Status: domain.TestStatusComplete},
		})

		coa, err := f.svc.Issue(authedCtx("qa-lead"), f.lotID)
		require.NoError(t, err)
		assert.Regexp(t, `^COA-\d{4}-[0-9a-f]{8}$`, coa.Number)
		assert.Equal(t, "qa-lead", coa.IssuedBy)
		assert.Len(t, coa.Results, 2)

		lot, err := f.lots.Get(context.Background(), f.lotID)
		require.NoError(t, err)
		assert.Equal(t, domain.LotStatusReleased, lot.Status)

		coaEntries := f.audit.forTable("coas")
		require.Len(t, coaEntries, 1)
		assert.Equal(t, domain.ActionInsert, coaEntries[0].Action)

		lotEntries := f.audit.forTable("lots")
		last := lotEntries[len(lotEntries)-1]
		assert.Equal(t, domain.ActionUpdate, last.Action)
		assert.Contains(t, last.Reason, coa.Number)
	})

	t.Run("unapproved lot refused", func(t *testing.T) {
		t.Parallel()
		f := newCOAFixture(t, domain.LotStatusInTesting, []domain.TestResult{
			{TestType: "Lead", ResultValue: "0.3", Status: domain.TestStatusComplete},
		})
		_, err := f.svc.Issue(authedCtx("qa-lead"), f.lotID)
		var cerr *domain.ConflictError
		assert.ErrorAs(t, err, &cerr)
	})

	t.Run("pending result blocks issuance", func(t *testing.T) {
		t.Parallel()
		f := newCOAFixture(t, domain.LotStatusApproved, []domain.TestResult{
			{TestType: "Lead", Status: domain.TestStatusPending},
		})
		_, err := f.svc.Issue(authedCtx("qa-lead"), f.lotID)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Message, "pending")
	})

	t.Run("out of spec result blocks issuance", func(t *testing.T) {
		t.Parallel()
		f := newCOAFixture(t, domain.LotStatusApproved, []domain.TestResult{
			{TestType: "Lead", ResultValue: "0.9", Status: domain.TestStatusOutOfSpec},
		})
		_, err := f.svc.Issue(authedCtx("qa-lead"), f.lotID)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("no results blocks issuance", func(t *testing.T) {
		t.Parallel()
		f := newCOAFixture(t, domain.LotStatusApproved, nil)
		_, err := f.svc.Issue(authedCtx("qa-lead"), f.lotID)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("second certificate refused", func(t *testing.T) {
		t.Parallel()
		f := newCOAFixture(t, domain.LotStatusApproved, []domain.TestResult{
			{TestType: "Lead", ResultValue: "0.3", Status: domain.TestStatusComplete},
		})
		_, err := f.svc.Issue(authedCtx("qa-lead"), f.lotID)
		require.NoError(t, err)

		// Re-approve to isolate the duplicate check from the status check.
		lot, err := f.lots.Get(context.Background(), f.lotID)
		require.NoError(t, err)
		lot.Status = domain.LotStatusApproved
		require.NoError(t, f.lots.lots.Update(context.Background(), lot))

		_, err = f.svc.Issue(authedCtx("qa-lead"), f.lotID)
		var cerr *domain.ConflictError
		assert.ErrorAs(t, err, &cerr)
	})
}
