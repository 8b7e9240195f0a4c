package account

import (
	"strings"
	"time"
)

// Role identifies the variant of an account.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAgent      Role = "AGENT"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Kind names the collection an account variant is stored in. Users and
// agents do not share a primary-key space.
type Kind int

const (
	KindUnknown Kind = iota
	KindUser
	KindAgent
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAgent:
		return "agent"
	default:
		return "unknown"
	}
}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", false
	}
	return r, true
}

// Valid reports whether r is one of the known variants.
func (r Role) Valid() bool {
	return r.Kind() != KindUnknown
}

// Kind maps the variant to its collection. Admins live alongside users.
func (r Role) Kind() Kind {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return KindUser
	case RoleAgent:
		return KindAgent
	default:
		return KindUnknown
	}
}

// IsAdministrator reports whether the role may manage other wallets.
func (r Role) IsAdministrator() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func (r Role) String() string { return string(r) }

// Account is a registered principal holding exactly one wallet.
type Account struct {
	ID        string
	Role      Role
	WalletID  string
	Active    bool
	Deleted   bool
	CreatedAt time.Time
}

// Kind is shorthand for a.Role.Kind().
func (a Account) Kind() Kind { return a.Role.Kind() }

// Principal is an authenticated caller as supplied by the auth layer.
type Principal struct {
	ID   string
	Role Role
}
