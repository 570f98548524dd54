package user

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type (
	Repository interface {
		QueryTeachers(ctx context.Context) ([]User, error)
		QueryStudents(ctx context.Context) ([]User, error)
		GetTeacherByID(ctx context.Context, id int) (User, error)
		// FindTeacherByCredentials and FindStudentByCredentials do an exact
		// field-equality match on email and password, mirroring the filtered
		// collection reads of the persistence service.
		FindTeacherByCredentials(ctx context.Context, email, password string) (User, error)
		FindStudentByCredentials(ctx context.Context, email, password string) (User, error)
		// GetStudentByName does an exact display-name lookup over the student
		// collection. Ambiguous when names collide; the first record wins.
		GetStudentByName(ctx context.Context, name string) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate resolves credentials against the teacher collection first,
// then the student collection; the first non-empty result wins.
func (svc *Service) Authenticate(ctx context.Context, email, password string) (Session, error) {
	usr, err := svc.repo.FindTeacherByCredentials(ctx, email, password)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Session{}, errors.Wrap(err, "finding teacher by credentials")
		}
		usr, err = svc.repo.FindStudentByCredentials(ctx, email, password)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return Session{}, ErrInvalidCredentials
			}
			return Session{}, errors.Wrap(err, "finding student by credentials")
		}
	}
	return Session{ID: usr.ID, Name: usr.Name, Email: usr.Email, Type: usr.Type}, nil
}

func (svc *Service) Teachers(ctx context.Context) ([]User, error) {
	return svc.repo.QueryTeachers(ctx)
}

func (svc *Service) Students(ctx context.Context) ([]User, error) {
	return svc.repo.QueryStudents(ctx)
}

func (svc *Service) TeacherByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) StudentByName(ctx context.Context, name string) (User, error) {
	return svc.repo.GetStudentByName(ctx, name)
}
