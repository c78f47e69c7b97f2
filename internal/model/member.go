// Package model defines the persistent domain entities of the study
// cafe: members, seats, products, orders, usage sessions, the mileage
// ledger and goal (todo) definitions.  Types mirror the database rows
// one to one; nullable columns are pointers.
package model

import (
	"fmt"
	"time"
)

// Role classifies a member account.  The guest role is a shared
// walk-in account: guests are identified at check-out by the phone
// number captured on their order, never by balances, and they hold
// neither mileage nor a minute balance.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role string coming from the database or a
// token claim.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleGuest, RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsGuest reports whether the role is the shared walk-in account.
func (r Role) IsGuest() bool { return r == RoleGuest }

// HasBalances reports whether accounts of this role carry an
// authoritative minute balance and mileage ledger.  Guest balances
// are never authoritative.
func (r Role) HasBalances() bool { return r == RoleUser || r == RoleAdmin }

// CanUseDashboard reports whether the role may log in to the web
// dashboard.
func (r Role) CanUseDashboard() bool { return r == RoleUser || r == RoleAdmin }

// Member is an account row.  Registered members carry login
// credentials and a kiosk PIN; the single guest row carries none of
// them.
type Member struct {
	ID              uint64    // members.member_id
	LoginID         *string   // members.login_id (nullable)
	PasswordHash    *string   // members.password_hash (nullable)
	Name            string    // members.name
	Phone           string    // members.phone
	Email           *string   // members.email (nullable)
	PinCode         *int      // members.pin_code (nullable)
	Role            Role      // members.role
	SavedTimeMinute int       // members.saved_time_minute
	TotalMileage    int       // members.total_mileage
	CreatedAt       time.Time // members.created_at
	UpdatedAt       time.Time // members.updated_at
}
