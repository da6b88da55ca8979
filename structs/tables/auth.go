package tables

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            int64     `json:"id" bun:"id,pk,autoincrement"`
	FirstName     string    `json:"first_name" bun:"first_name,notnull"`
	LastName      string    `json:"last_name" bun:"last_name,notnull"`
	Email         string    `json:"email" bun:"email,unique,notnull"`
	PasswordHash  string    `json:"-" bun:"password_hash,notnull"`
	CreatedAt     time.Time `json:"created_at" bun:"created_at,notnull,default:current_timestamp"`
}

// DisplayName is how reviews and the account page address the user.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
