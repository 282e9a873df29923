package users

import "encoding/json"

// Role is the closed set of roles the dashboard understands. The server owns
// the role vocabulary, so unrecognised strings decode to RoleUnknown rather
// than failing - RoleUnknown is admitted by no route guard.
type Role string

const (
	RoleAdmin         Role = "admin"          // Runs the store area
	RoleBranchManager Role = "branch_manager" // Runs a single branch area
	RoleUnknown       Role = ""               // Anything the client does not recognise
)

// ParseRole maps a wire string onto the closed role set.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleBranchManager:
		return RoleBranchManager
	}
	return RoleUnknown
}

func (r Role) String() string {
	return string(r)
}

// MarshalJSON serializes the role as its wire string.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

// UnmarshalJSON normalises the wire string onto the closed role set.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}
