package domain

import "time"

// Lot statuses. A lot moves pending → in_testing → approved/rejected,
// and an approved lot may be released once a COA is issued.
const (
	LotStatusPending   = "pending"
	LotStatusInTesting = "in_testing"
	LotStatusApproved  = "approved"
	LotStatusRejected  = "rejected"
	LotStatusReleased  = "released"
)

// Lot is a manufactured batch of a product tracked through sampling
// and testing.
type Lot struct {
	ID              int64
	LotNumber       string
	ProductName     string
	CustomerID      *int64
	Quantity        float64
	Unit            string
	Status          string
	ManufactureDate *time.Time
	ExpiryDate      *time.Time
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LotUpdate carries optional field updates for a lot. Nil means "leave
// unchanged".
type LotUpdate struct {
	ProductName     *string
	CustomerID      *int64
	Quantity        *float64
	Unit            *string
	ManufactureDate *time.Time
	ExpiryDate      *time.Time
	Notes           *string
}

// LotFilter narrows lot list queries.
type LotFilter struct {
	Status     *string
	CustomerID *int64
	Page       PageRequest
}
