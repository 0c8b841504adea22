package models

// LoginRequest is the payload for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// CreateComplaintRequest is the payload for POST /api/complaints
type CreateComplaintRequest struct {
	CustomerName     string `json:"customer_name"`
	CustomerID       string `json:"customer_id"`
	PolicyNumber     string `json:"policy_number"`
	PolicyType       string `json:"policy_type"`
	Description      string `json:"description"`
	Channel          string `json:"channel"`
	BranchID         int64  `json:"branch_id"`
	LineOfBusinessID int64  `json:"line_of_business_id"`
}

// UpdateComplaintRequest is the payload for PUT /api/complaints/{id}.
// Pointer fields distinguish "omitted" from zero values.
type UpdateComplaintRequest struct {
	CustomerName *string `json:"customer_name,omitempty"`
	CustomerID   *string `json:"customer_id,omitempty"`
	PolicyNumber *string `json:"policy_number,omitempty"`
	PolicyType   *string `json:"policy_type,omitempty"`
	Description  *string `json:"description,omitempty"`
	Channel      *string `json:"channel,omitempty"`
}

// SetStatusRequest is the payload for POST /api/complaints/{id}/status
type SetStatusRequest struct {
	Status string `json:"status"`
}

// AssignRequest is the payload for POST /api/complaints/{id}/assign.
// A nil AssignedToID requests automatic assignment.
type AssignRequest struct {
	AssignedToID *int64 `json:"assigned_to_id,omitempty"`
}

// AddActionRequest is the payload for POST /api/complaints/{id}/actions
type AddActionRequest struct {
	Description string `json:"description"`
}

// CreateUserRequest is the payload for POST /api/users
type CreateUserRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	BranchID         *int64 `json:"branch_id,omitempty"`
	LineOfBusinessID *int64 `json:"line_of_business_id,omitempty"`
}

// UpdateUserRequest is the payload for PUT /api/users/{id}
type UpdateUserRequest struct {
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Password         *string `json:"password,omitempty"`
	Role             *string `json:"role,omitempty"`
	BranchID         *int64  `json:"branch_id,omitempty"`
	LineOfBusinessID *int64  `json:"line_of_business_id,omitempty"`
}

// UpsertLookupRequest covers branch and line-of-business create/update
type UpsertLookupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DashboardStats summarizes complaint counts for the dashboard endpoint
type DashboardStats struct {
	Total      int            `json:"total"`
	Overdue    int            `json:"overdue"`
	Unassigned int            `json:"unassigned"`
	ByStatus   map[Status]int `json:"by_status"`
	ByBranch   map[string]int `json:"by_branch"`
}
