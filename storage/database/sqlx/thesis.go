package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/raresamza/mythesis/core/thesis"
)

const requestColumns = "id, title, description, student, teacher_id, status, supervisor, comments, created_at, updated_at"

// commentList maps the request's comment thread onto a jsonb column;
// updates replace the whole array.
type commentList []thesis.Comment

func (cl commentList) Value() (driver.Value, error) {
	if cl == nil {
		cl = commentList{}
	}
	return json.Marshal(cl)
}

func (cl *commentList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*cl = nil
		return nil
	case []byte:
		return json.Unmarshal(v, cl)
	case string:
		return json.Unmarshal([]byte(v), cl)
	default:
		return errors.Errorf("unsupported comments column type %T", src)
	}
}

type dbRequest struct {
	ID          int            `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Student     string         `db:"student"`
	TeacherID   int            `db:"teacher_id"`
	Status      string         `db:"status"`
	Supervisor  sql.NullString `db:"supervisor"`
	Comments    commentList    `db:"comments"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r dbRequest) toRequest() thesis.Request {
	return thesis.Request{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Student:     r.Student,
		TeacherID:   r.TeacherID,
		Status:      r.Status,
		Supervisor:  r.Supervisor.String,
		Comments:    r.Comments,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type RequestRepository struct {
	db *sqlx.DB
}

var _ thesis.Repository = (*RequestRepository)(nil)

func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (repo *RequestRepository) CreateRequest(ctx context.Context, req thesis.Request) (thesis.Request, error) {
	var row dbRequest
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO requests (title, description, student, teacher_id, status, comments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+requestColumns,
		req.Title, req.Description, req.Student, req.TeacherID, req.Status,
		commentList(req.Comments), req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return thesis.Request{}, errors.Wrap(err, "inserting request")
	}
	return row.toRequest(), nil
}

func (repo *RequestRepository) GetRequestByID(ctx context.Context, id int) (thesis.Request, error) {
	var row dbRequest
	err := repo.db.GetContext(ctx, &row, "SELECT "+requestColumns+" FROM requests WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return thesis.Request{}, thesis.ErrNotFound
		}
		return thesis.Request{}, errors.Wrap(err, "getting request by ID")
	}
	return row.toRequest(), nil
}

func (repo *RequestRepository) selectRequests(ctx context.Context, query string, args ...interface{}) ([]thesis.Request, error) {
	var rows []dbRequest
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying requests")
	}
	reqs := make([]thesis.Request, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.toRequest())
	}
	return reqs, nil
}

func (repo *RequestRepository) QueryAllRequests(ctx context.Context) ([]thesis.Request, error) {
	return repo.selectRequests(ctx, "SELECT "+requestColumns+" FROM requests ORDER BY id")
}

func (repo *RequestRepository) FilterRequestsByTeacherID(ctx context.Context, teacherID int) ([]thesis.Request, error) {
	return repo.selectRequests(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE teacher_id = $1 ORDER BY id", teacherID)
}

func (repo *RequestRepository) FilterRequestsByStudent(ctx context.Context, student string) ([]thesis.Request, error) {
	return repo.selectRequests(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE student = $1 ORDER BY id", student)
}

func (repo *RequestRepository) UpdateRequestStatus(ctx context.Context, id int, status, supervisor string) (thesis.Request, error) {
	var row dbRequest
	err := repo.db.GetContext(ctx, &row, `
		UPDATE requests
		SET status = $2, supervisor = NULLIF($3, ''), updated_at = $4
		WHERE id = $1
		RETURNING `+requestColumns,
		id, status, supervisor, time.Now().UTC())
	if err != nil {
		if err == sql.ErrNoRows {
			return thesis.Request{}, thesis.ErrNotFound
		}
		return thesis.Request{}, errors.Wrap(err, "updating request status")
	}
	return row.toRequest(), nil
}

func (repo *RequestRepository) UpdateRequestComments(ctx context.Context, id int, comments []thesis.Comment) (thesis.Request, error) {
	var row dbRequest
	err := repo.db.GetContext(ctx, &row, `
		UPDATE requests
		SET comments = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+requestColumns,
		id, commentList(comments), time.Now().UTC())
	if err != nil {
		if err == sql.ErrNoRows {
			return thesis.Request{}, thesis.ErrNotFound
		}
		return thesis.Request{}, errors.Wrap(err, "updating request comments")
	}
	return row.toRequest(), nil
}
