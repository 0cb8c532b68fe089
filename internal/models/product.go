package models

import (
	"time"
)

// Product is a vending machine slot owned by a seller.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"product_name" db:"name"`
	Price     int64     `json:"cost" db:"price"`
	Stock     int64     `json:"amount_available" db:"stock"`
	OwnerID   string    `json:"seller_username" db:"owner_id"`
	Deleted   bool      `json:"deleted" db:"deleted"`
	Version   int64     `json:"-" db:"version"` // for optimistic locking
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProductPatch carries the fields a seller wants to change. Nil fields are left untouched.
type ProductPatch struct {
	Name  *string
	Price *int64
	Stock *int64
}

// PurchaseResult is the outcome of a single successful purchase.
type PurchaseResult struct {
	Product Product `json:"product"`
	Change  []int64 `json:"change"`
	Spent   int64   `json:"spent"`
}

// PurchaseEvent is published after a purchase commits.
type PurchaseEvent struct {
	ProductID string    `json:"product_id"`
	Buyer     string    `json:"buyer"`
	SellerID  string    `json:"seller"`
	Price     int64     `json:"price"`
	Change    []int64   `json:"change"`
	Remaining int64     `json:"remaining_stock"`
	CreatedAt time.Time `json:"created_at"`
}
