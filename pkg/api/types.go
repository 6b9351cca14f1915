package api

// RoleSummary is the wire representation of a role.
type RoleSummary struct {
	Name     string   `json:"name"`
	Members  []int64  `json:"members"`
	Children []string `json:"children,omitempty"`
}

// CreateRoleRequest is the body for POST /roles.
type CreateRoleRequest struct {
	Name     string   `json:"name"`
	Members  []int64  `json:"members,omitempty"`
	Children []string `json:"children,omitempty"`
}

// MemberRequest is the body for POST /roles/{name}/members and POST /admins.
type MemberRequest struct {
	ID int64 `json:"id"`
}

// CheckRequest is the body for POST /check.
type CheckRequest struct {
	Role   string `json:"role"`
	UserID int64  `json:"user_id"`
	ChatID int64  `json:"chat_id,omitempty"`
	Chat   string `json:"chat_kind,omitempty"`
}

// CheckResponse is the result of an access check.
type CheckResponse struct {
	Role    string `json:"role"`
	UserID  int64  `json:"user_id"`
	Allowed bool   `json:"allowed"`
}

// ErrorResponse is the wire representation of an error.
type ErrorResponse struct {
	Error string `json:"error"`
}
