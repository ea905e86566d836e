package domain

import "time"

// Test result statuses.
const (
	TestStatusPending   = "pending"
	TestStatusComplete  = "complete"
	TestStatusOutOfSpec = "out_of_spec"
)

// TestResult is one lab test performed against a lot. SpecMin/SpecMax,
// when set, bound the acceptable numeric result.
type TestResult struct {
	ID          int64
	LotID       int64
	TestType    string
	ResultValue string
	Unit        string
	Method      string
	SpecMin     *float64
	SpecMax     *float64
	Status      string
	Analyst     string
	TestedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TestResultUpdate carries optional field updates for a test result.
type TestResultUpdate struct {
	ResultValue *string
	Unit        *string
	Method      *string
	SpecMin     *float64
	SpecMax     *float64
	Analyst     *string
	TestedAt    *time.Time
}

// TestMethod is a catalog entry describing a test the lab can run.
// The catalog is seeded at startup and referenced when creating results.
type TestMethod struct {
	ID        int64
	Name      string
	Unit      string
	Method    string
	SpecMin   *float64
	SpecMax   *float64
	CreatedAt time.Time
}
