package models

type UserRole string
type Role = UserRole

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// Caller is the authenticated identity attached to a request. Accounts live in
// the identity provider; only the id and role reach this service.
type Caller struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
}

func (c Caller) IsTeacher() bool {
	return c.Role == RoleTeacher || c.Role == RoleAdmin
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
