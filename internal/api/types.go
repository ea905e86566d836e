package api

import (
	"time"

	"github.com/grbod/labtrack/internal/domain"
)

// Wire representations. Domain structs stay JSON-free; the mapping here
// is the single place field names are committed to the API.

type customerJSON struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCustomerJSON(c *domain.Customer) customerJSON {
	return customerJSON{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type lotJSON struct {
	ID              int64      `json:"id"`
	LotNumber       string     `json:"lot_number"`
	ProductName     string     `json:"product_name"`
	CustomerID      *int64     `json:"customer_id,omitempty"`
	Quantity        float64    `json:"quantity"`
	Unit            string     `json:"unit,omitempty"`
	Status          string     `json:"status"`
	ManufactureDate *time.Time `json:"manufacture_date,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toLotJSON(l *domain.Lot) lotJSON {
	return lotJSON{
		ID:              l.ID,
		LotNumber:       l.LotNumber,
		ProductName:     l.ProductName,
		CustomerID:      l.CustomerID,
		Quantity:        l.Quantity,
		Unit:            l.Unit,
		Status:          l.Status,
		ManufactureDate: l.ManufactureDate,
		ExpiryDate:      l.ExpiryDate,
		Notes:           l.Notes,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

type testResultJSON struct {
	ID          int64      `json:"id"`
	LotID       int64      `json:"lot_id"`
	TestType    string     `json:"test_type"`
	ResultValue string     `json:"result_value,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	Method      string     `json:"method,omitempty"`
	SpecMin     *float64   `json:"spec_min,omitempty"`
	SpecMax     *float64   `json:"spec_max,omitempty"`
	Status      string     `json:"status"`
	Analyst     string     `json:"analyst,omitempty"`
	TestedAt    *time.Time `json:"tested_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTestResultJSON(t *domain.TestResult) testResultJSON {
	return testResultJSON{
		ID:          t.ID,
		LotID:       t.LotID,
		TestType:    t.TestType,
		ResultValue: t.ResultValue,
		Unit:        t.Unit,
		Method:      t.Method,
		SpecMin:     t.SpecMin,
		SpecMax:     t.SpecMax,
		Status:      t.Status,
		Analyst:     t.Analyst,
		TestedAt:    t.TestedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type coaJSON struct {
	ID        int64              `json:"id"`
	Number    string             `json:"number"`
	LotID     int64              `json:"lot_id"`
	IssuedBy  string             `json:"issued_by"`
	IssuedAt  time.Time          `json:"issued_at"`
	Results   []domain.COAResult `json:"results"`
	CreatedAt time.Time          `json:"created_at"`
}

func toCOAJSON(c *domain.COA) coaJSON {
	return coaJSON{
		ID:        c.ID,
		Number:    c.Number,
		LotID:     c.LotID,
		IssuedBy:  c.IssuedBy,
		IssuedAt:  c.IssuedAt,
		Results:   c.Results,
		CreatedAt: c.CreatedAt,
	}
}

type auditEntryJSON struct {
	ID              int64                `json:"id"`
	TableName       string               `json:"table_name"`
	RecordID        int64                `json:"record_id"`
	Action          string               `json:"action"`
	Timestamp       time.Time            `json:"timestamp"`
	Username        string               `json:"username,omitempty"`
	Changes         []domain.FieldChange `json:"changes,omitempty"`
	Reason          string               `json:"reason,omitempty"`
	IsBulkOperation bool                 `json:"is_bulk_operation,omitempty"`
	BulkSummary     string               `json:"bulk_summary,omitempty"`
	AnnotationCount int                  `json:"annotation_count"`
}

func toAuditEntryJSON(e *domain.AuditEntry) auditEntryJSON {
	return auditEntryJSON{
		ID:              e.ID,
		TableName:       e.TableName,
		RecordID:        e.RecordID,
		Action:          string(e.Action),
		Timestamp:       e.Timestamp,
		Username:        e.Username,
		Changes:         e.Changes,
		Reason:          e.Reason,
		IsBulkOperation: e.IsBulkOperation,
		BulkSummary:     e.BulkSummary,
		AnnotationCount: e.AnnotationCount,
	}
}

type annotationJSON struct {
	ID        int64     `json:"id"`
	AuditID   int64     `json:"audit_id"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func toAnnotationJSON(a *domain.Annotation) annotationJSON {
	return annotationJSON{
		ID:        a.ID,
		AuditID:   a.AuditID,
		Username:  a.Username,
		Body:      a.Body,
		CreatedAt: a.CreatedAt,
	}
}
