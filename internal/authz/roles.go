package authz

const (
	RoleUser   = "user"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

func IsValid(role string) bool {
	return role == RoleUser || role == RoleSeller || role == RoleAdmin
}

// IsStaff reports whether the role may see and manage every order.
func IsStaff(role string) bool {
	return role == RoleSeller || role == RoleAdmin
}

// SelfAssignable lists roles a user may pick when registering.
func SelfAssignable(role string) bool {
	return role == RoleUser || role == RoleSeller
}
