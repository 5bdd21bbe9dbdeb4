package entity

import "time"

// Customer representa un cliente (persona o empresa).
type Customer struct {
	ID        string
	Name      string
	TaxID     string // RUT
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
