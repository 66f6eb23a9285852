// Package accounts is a small standalone CRUD service over bank-style accounts.
package accounts

import "time"

// Account is both the stored entity and the wire shape.
type Account struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"owner" validate:"required,min=2,max=100"`
	Email     string    `json:"email" validate:"required,email"`
	Balance   int64     `json:"balance" validate:"gte=0"`
	Currency  string    `json:"currency" validate:"required,len=3,uppercase"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
