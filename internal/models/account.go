package models

import (
	"time"
)

// Account holds a buyer's deposited balance, in the smallest currency unit.
type Account struct {
	OwnerID   string    `json:"username" db:"owner_id"`
	Balance   int64     `json:"deposit" db:"balance"`
	Version   int64     `json:"-" db:"version"` // for optimistic locking
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
