package dto

// RegisterRequest is the JSON body for POST /auth/register and POST /users.
// Required-ness is checked in the service so the error message covers all
// three fields at once.
type RegisterRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the JSON body for PUT /users/{id}. Pointer fields
// distinguish "absent" from "present but empty"; the latter is an error.
type UpdateUserRequest struct {
	Fullname *string `json:"fullname"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UserResponse is the serialized user record. The credential hash is never
// part of it. Timestamps are RFC 3339 UTC strings.
type UserResponse struct {
	ID        string `json:"id"`
	Fullname  string `json:"fullname"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	User UserResponse `json:"user"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// ListUsersResponse wraps the full user list.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// DeleteResponse acknowledges a permanent delete.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}
