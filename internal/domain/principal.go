package domain

// Role mirrors the roles issued by the surrounding platform.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleCustomer Role = "CUSTOMER"
)

// Principal is the authenticated caller, as asserted by the gateway.
// The service never verifies credentials itself.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// IsStaff reports whether the principal may perform staff-level operations.
func (p Principal) IsStaff() bool {
	return p.Role == RoleAdmin || p.Role == RoleStaff
}

// CanAccessOrder allows staff, or the order's owner.
func (p Principal) CanAccessOrder(o Order) bool {
	return p.IsStaff() || o.UserID == p.UserID
}
