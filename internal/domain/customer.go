package domain

import "time"

// Customer is a client for whom lots are produced and COAs released.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
