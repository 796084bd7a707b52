package domain

import "time"

type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"notblank"`
	Phone     string    `json:"phone" validate:"notblank"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"notblank"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is a catalog entry of one shop. Price is in the smallest currency unit.
type Item struct {
	ID         string    `json:"id"`
	Name       string    `json:"name" validate:"notblank"`
	Price      int64     `json:"price" validate:"min=0"`
	ShopID     string    `json:"shop_id" validate:"required"`
	CategoryID string    `json:"category_id" validate:"required"`
	CreatedAt  time.Time `json:"created_at"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Order is a group purchase at one shop. UserID is the owner.
type Order struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"notblank"`
	ShopID    string    `json:"shop_id" validate:"required"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderParticipant invites a user onto an order. The owner is never stored as a participant.
type OrderParticipant struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

// OrderLineItem records that UserID selected ItemID within OrderID.
type OrderLineItem struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	ItemID  string `json:"item_id"`
}

// OrderPatch carries the editable fields of an order. Nil fields are left untouched.
type OrderPatch struct {
	Name   *string `json:"name"`
	ShopID *string `json:"shop_id"`
}

// ItemFilter narrows item listings. Empty fields match everything.
type ItemFilter struct {
	ShopID     string
	CategoryID string
}
