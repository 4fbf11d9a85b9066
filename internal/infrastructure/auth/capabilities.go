package auth

// Capabilities answers whether an actor may perform privileged financial
// operations. The HTTP layer consults it before decision endpoints; the
// application services themselves receive an already-authorized actor.
type Capabilities interface {
	CanVerifyPayment(claims *Claims) bool
	CanApproveExpense(claims *Claims) bool
	CanAdjustFund(claims *Claims) bool
}

// RoleCapabilities is the claims-role-based default: managers and admins
// hold all financial capabilities, residents none.
type RoleCapabilities struct{}

// NewRoleCapabilities creates the default role-based capability set
func NewRoleCapabilities() *RoleCapabilities {
	return &RoleCapabilities{}
}

func (RoleCapabilities) CanVerifyPayment(claims *Claims) bool {
	return claims != nil && (claims.Role == RoleAdmin || claims.Role == RoleManager)
}

func (RoleCapabilities) CanApproveExpense(claims *Claims) bool {
	return claims != nil && (claims.Role == RoleAdmin || claims.Role == RoleManager)
}

func (RoleCapabilities) CanAdjustFund(claims *Claims) bool {
	return claims != nil && (claims.Role == RoleAdmin || claims.Role == RoleManager)
}
