package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SignupRequest accepts either an explicit username or derives one from the
// email local-part. Role "admin" grants superuser, "manager" grants staff.
type SignupRequest struct {
	Username        string `json:"username"         validate:"omitempty,max=150"`
	Email           string `json:"email"            validate:"required,email,max=254"`
	Name            string `json:"name"             validate:"omitempty,max=150"`
	Password        string `json:"password"         validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm"`
	Role            string `json:"role"             validate:"omitempty,oneof=manager admin"`
}

// LoginRequest.Login is a username or, when it contains "@", an email.
type LoginRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	UID             string `json:"uid"              validate:"required"`
	Token           string `json:"token"            validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	DateJoined  time.Time `json:"date_joined"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

type ProfileResponse struct {
	Success          bool         `json:"success"`
	User             UserResponse `json:"user"`
	AuthenticatedVia string       `json:"authenticated_via"` // cookie | header
}

// PasswordResetResponse carries uid/token only when delivery mode is "response".
type PasswordResetResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	UserExists bool   `json:"user_exists"`
	UID        string `json:"uid,omitempty"`
	Token      string `json:"token,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
