package thesis

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/raresamza/mythesis/core"
)

// Request statuses. A request starts out pending and transitions at most once
// to a terminal state; there is no way back to pending.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// Comment is an append-only entry on a request's thread. Author is a display
// name, not a foreign key.
type Comment struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// Request is a student's thesis proposal pending a teacher's decision.
// Supervisor is set only on approval and stays empty otherwise.
type Request struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Student     string    `json:"student"`
	TeacherID   int       `json:"teacherId"`
	Status      string    `json:"status"`
	Supervisor  string    `json:"supervisor,omitempty"`
	Comments    []Comment `json:"comments"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (r *Request) IsDecided() bool { return r.Status != StatusPending }

// Thesis is the roster projection of a Request: id, title and supervisor,
// status ignored. Clients render an empty supervisor as "Not Supervised".
type Thesis struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Supervisor  string `json:"supervisor,omitempty"`
}

// NewRequest contains information needed to propose a thesis.
// A teacher must be selected before anything touches storage.
type NewRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	TeacherID   int    `json:"teacherId" validate:"required"`
}

func (nr *NewRequest) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.Description = core.CleanString(nr.Description)
	return validate.Struct(nr)
}

// NewComment is a comment payload. Empty or whitespace-only text is rejected
// before any storage access.
type NewComment struct {
	Text string `json:"text" validate:"required"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Text = core.CleanString(nc.Text)
	return validate.Struct(nc)
}
