package domain

type Role string

const (
	// User can see only the cases they are a party to.
	RoleUser Role = "user"
	// Lawyer can manage clients, cases and calendar items assigned to them.
	RoleLawyer Role = "lawyer"
	// Admin can manage accounts: role changes, activation toggles, forced sign-out.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleLawyer) || r == string(RoleAdmin)
}

// RoleRank: bigger => higher privilege
func RoleRank(r string) int {
	switch r {
	case string(RoleUser):
		return 1
	case string(RoleLawyer):
		return 2
	case string(RoleAdmin):
		return 3
	default:
		return 0
	}
}
