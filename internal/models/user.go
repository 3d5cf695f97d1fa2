package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
	RoleUser  = "user"
)

const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// Address represents a single address entry embedded on a user.
type Address struct {
	ID        string `bson:"id" json:"id"`
	Label     string `bson:"label" json:"label"`
	Recipient string `bson:"recipient" json:"recipient"`
	Phone     string `bson:"phone" json:"phone"`
	Detail    string `bson:"detail" json:"detail"`
	IsDefault bool   `bson:"isDefault" json:"isDefault"`
}

// User represents the application user account. Voucher holdings are an
// embedded map of voucher id to remaining redemption count.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"passwordHash" json:"-"`
	Name         string               `bson:"name" json:"name"`
	Phone        string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         string               `bson:"role" json:"role"`
	Status       string               `bson:"status" json:"status"`
	Addresses    []Address            `bson:"addresses" json:"addresses"`
	Wishlist     []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	Vouchers     VoucherHoldings      `bson:"vouchers" json:"vouchers"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsActive reports whether the account may authenticate.
func (u User) IsActive() bool {
	return u.Status == UserStatusActive
}
