package models

import "time"

// Roles a user can sign up with. A user's role never changes.
const (
	RoleStudent      = "student"
	RoleProfessional = "professional"
)

// DefaultDescription is stored for users who never set one.
const DefaultDescription = "I Am a Professional"

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleProfessional
}

// User represents a row in the PostgreSQL users table.
type User struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Password    string    `json:"-"` // never serialize
	Role        string    `json:"role"`
	DateOfBirth string    `json:"dob"`
	Course      string    `json:"course"`
	Gender      string    `json:"gender"`
	ProfilePic  string    `json:"profilePic"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewUser carries the fields needed to create a user.
type NewUser struct {
	FullName       string
	Email          string
	HashedPassword string
	Role           string
}

// PublicProfile is the part of a user shown to the other side of an
// appointment.
type PublicProfile struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
	ProfilePic  string `json:"profilePic"`
	Description string `json:"description,omitempty"`
}

// Public returns the public view of u.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		Role:        u.Role,
		ProfilePic:  u.ProfilePic,
		Description: u.Description,
	}
}

// ProfileUpdate lists the fields a user may change on their own profile.
// A nil field is left untouched; an empty string clears the value.
type ProfileUpdate struct {
	DateOfBirth *string `json:"dob"`
	Course      *string `json:"course"`
	Gender      *string `json:"gender"`
	ProfilePic  *string `json:"profilePic"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.DateOfBirth == nil && p.Course == nil && p.Gender == nil && p.ProfilePic == nil
}

// SignupRequest is the JSON body for POST /api/auth/signup.
type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Role    string `json:"role"`
	User    *User  `json:"user"`
}
