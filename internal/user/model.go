package user

import (
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type PriceTier string

const (
	TierStandard PriceTier = "standard"
	TierPremium  PriceTier = "premium"
	TierVIP      PriceTier = "vip"
)

func (r Role) Valid() bool { return r == RoleCustomer || r == RoleAdmin }

func (t PriceTier) Valid() bool {
	return t == TierStandard || t == TierPremium || t == TierVIP
}

// User is a store account. PasswordHash is nil for accounts created through a
// third-party identity; those cannot log in with a password.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash *string    `json:"-"`
	Name         string     `json:"name"`
	Phone        *string    `json:"phone,omitempty"`
	Company      *string    `json:"company,omitempty"`
	Role         Role       `json:"role"`
	PriceTier    PriceTier  `json:"priceTier"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

type RegisterInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
	Company  *string `json:"company,omitempty"`
}

// UpdateInput lists the fields staff may change. Nil means untouched.
type UpdateInput struct {
	PriceTier *PriceTier `json:"priceTier,omitempty"`
	Role      *Role      `json:"role,omitempty"`
	Name      *string    `json:"name,omitempty"`
	Company   *string    `json:"company,omitempty"`
}

func (in UpdateInput) Empty() bool {
	return in.PriceTier == nil && in.Role == nil && in.Name == nil && in.Company == nil
}

type CreateParams struct {
	Email        string
	PasswordHash string
	Name         string
	Phone        *string
	Company      *string
	Role         Role
	PriceTier    PriceTier
}
