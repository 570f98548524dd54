package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/raresamza/mythesis/core"
)

// User types
const (
	TypeTeacher = "teacher"
	TypeStudent = "student"
)

// User is a member of the teacher or student directory. The directory is
// read-only from the application's perspective: there is no signup flow,
// records are seeded out-of-band (see apps/admin).
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (u *User) IsTeacher() bool { return u.Type == TypeTeacher }
func (u *User) IsStudent() bool { return u.Type == TypeStudent }

// Session is the authenticated identity handed to view-level handlers.
// It is serialized into the session token at login and restored from it on
// every request; no ambient/global session state exists.
type Session struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

// Credentials is a login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}
