package structs

import (
	"time"

	"github.com/google/uuid"
)

type ArgonParams struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	Sub int64     `json:"sub"`
	Iat time.Time `json:"iat"`
	Exp time.Time `json:"exp"`
	Jti uuid.UUID `json:"jti"`
}

// Session identifies an authenticated account for the lifetime of its token.
// It is resolved once per request and passed explicitly to the services.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginRequest struct {
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required"`
}

type RegisterRequest struct {
	FirstName       string `form:"first_name" validate:"required,max=50"`
	LastName        string `form:"last_name" validate:"required,max=50"`
	Email           string `form:"email" validate:"required,email,max=100"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

type AccountUpdateRequest struct {
	FirstName          string `form:"first_name" validate:"required,min=2,max=50"`
	LastName           string `form:"last_name" validate:"required,min=2,max=50"`
	Email              string `form:"email" validate:"required,email,max=100"`
	OldPassword        string `form:"old_password" validate:"required"`
	NewPassword        string `form:"new_password" validate:"omitempty,min=8,max=128"`
	ConfirmNewPassword string `form:"confirm_new_password" validate:"eqfield=NewPassword"`
}

type AccountView struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}
