package domain

// Identity is the authenticated caller resolved from a session token.
type Identity struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"sub"`
	Role   string `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccess reports whether the caller may act on a resource owned by ownerID.
// Admins may act on anything; everyone else only on what they own.
func (i Identity) CanAccess(ownerID int64) bool {
	return i.IsAdmin() || i.UserID == ownerID
}
