package models

import "strings"

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleTenant Role = "TENANT"
)

// ParseRole maps backend role strings onto Role. Anything that is not ADMIN
// is treated as a tenant, matching how the console routes users.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleTenant
}

// User is an account as managed by administrators. Password travels in
// plaintext in the admin user endpoints.
type User struct {
	ID           ID     `json:"id,omitempty"`
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password,omitempty"`
	Role         Role   `json:"role" validate:"required,oneof=ADMIN TENANT"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	MobileNumber string `json:"mobileNumber,omitempty"`
}

// LoginResult is what /users/login returns.
type LoginResult struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token,omitempty"`
}

// RegistrationStart is the body of POST /users/registration/start.
type RegistrationStart struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
}

// RegistrationFinish is the body of POST /users/registration/finish.
type RegistrationFinish struct {
	Username string `json:"username"`
	OTP      string `json:"otp"`
	Password string `json:"password"`
}
