package users

// Branch holds the details of the branch a manager is responsible for.
type Branch struct {
	ID             int    `json:"id,omitempty"`
	Name           string `json:"name,omitempty"`
	Location       string `json:"location,omitempty"`
	ContactDetails string `json:"contact_details,omitempty"`
}

// User is the authenticated identity returned by the dashboard API on login.
// ManagedBranch is populated if and only if the role is branch manager.
type User struct {
	ID            int     `json:"id,omitempty"`
	Username      string  `json:"username,omitempty"`
	Email         string  `json:"email,omitempty"`
	Role          Role    `json:"role,omitempty"`
	ManagedBranch *Branch `json:"managed_branch,omitempty"`
}

// IsAdmin reports whether the user administers the store area.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsBranchManager reports whether the user manages a branch.
func (u *User) IsBranchManager() bool {
	return u != nil && u.Role == RoleBranchManager
}
