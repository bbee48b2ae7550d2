package domain

// Staff roles.
const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleReceptionist = "receptionist"
)

// ValidRole reports whether r is one of the known staff roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleDoctor || r == RoleReceptionist
}

type StaffUser struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	Role         string `db:"role" json:"role"`
	PasswordHash string `db:"password_hash" json:"-"`
	IsActive     bool   `db:"is_active" json:"is_active"`
	CreatedAt    string `db:"created_at" json:"created_at,omitempty"`
}
