package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/raresamza/mythesis/core/user"
	inmemdb "github.com/raresamza/mythesis/storage/database/inmem"
)

func setup(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()
	repo := inmemdb.NewUserRepository(inmemdb.NewDB())
	return user.NewService(repo), repo
}

func createUser(t *testing.T, repo user.Repository, name, email, pwd, typ string) user.User {
	t.Helper()
	usr, err := repo.UpdateOrCreateUser(context.Background(), user.User{
		Name:     name,
		Email:    email,
		Password: pwd,
		Type:     typ,
	})
	if err != nil {
		t.Fatalf("UpdateOrCreateUser() failed: %v", err)
	}
	return usr
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	teacher := createUser(t, repo, "Prof. Stone", "stone@test.cd", "s3cret", user.TypeTeacher)
	student := createUser(t, repo, "Alice Johnson", "alice@test.cd", "passw0rd", user.TypeStudent)

	tests := []struct {
		name     string
		email    string
		password string
		wantSess user.Session
		wantErr  error
	}{
		{
			name: "teacher logs in", email: "stone@test.cd", password: "s3cret",
			wantSess: user.Session{ID: teacher.ID, Name: teacher.Name, Email: teacher.Email, Type: user.TypeTeacher},
		},
		{
			name: "student logs in", email: "alice@test.cd", password: "passw0rd",
			wantSess: user.Session{ID: student.ID, Name: student.Name, Email: student.Email, Type: user.TypeStudent},
		},
		{name: "wrong password", email: "alice@test.cd", password: "lol", wantErr: user.ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@test.cd", password: "passw0rd", wantErr: user.ErrInvalidCredentials},
		{name: "empty credentials", wantErr: user.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := svc.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				if errors.Cause(err) != tt.wantErr {
					t.Errorf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() failed: %v", err)
			}
			if sess != tt.wantSess {
				t.Errorf("Authenticate() session = %+v, want %+v", sess, tt.wantSess)
			}
		})
	}
}

// collidingRepo serves a teacher and a student registered with the same
// email and password in their respective collections.
type collidingRepo struct {
	user.Repository
	teacher user.User
	student user.User
}

func (r *collidingRepo) FindTeacherByCredentials(_ context.Context, email, password string) (user.User, error) {
	if email == r.teacher.Email && password == r.teacher.Password {
		return r.teacher, nil
	}
	return user.User{}, user.ErrNotFound
}

func (r *collidingRepo) FindStudentByCredentials(_ context.Context, email, password string) (user.User, error) {
	if email == r.student.Email && password == r.student.Password {
		return r.student, nil
	}
	return user.User{}, user.ErrNotFound
}

func TestService_Authenticate_teacherWinsOnCollision(t *testing.T) {
	repo := &collidingRepo{
		teacher: user.User{ID: 1, Name: "Prof. Stone", Email: "shared@test.cd", Password: "s3cret", Type: user.TypeTeacher},
		student: user.User{ID: 2, Name: "Alice Johnson", Email: "shared@test.cd", Password: "s3cret", Type: user.TypeStudent},
	}
	svc := user.NewService(repo)

	sess, err := svc.Authenticate(context.Background(), "shared@test.cd", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if sess.ID != repo.teacher.ID || sess.Type != user.TypeTeacher {
		t.Errorf("Authenticate() session = %+v, want the teacher (id %d)", sess, repo.teacher.ID)
	}
}

func TestService_Teachers(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	t1 := createUser(t, repo, "Prof. Stone", "stone@test.cd", "s3cret", user.TypeTeacher)
	t2 := createUser(t, repo, "Dr. Reed", "reed@test.cd", "s3cret", user.TypeTeacher)
	createUser(t, repo, "Alice Johnson", "alice@test.cd", "passw0rd", user.TypeStudent)

	teachers, err := svc.Teachers(ctx)
	if err != nil {
		t.Fatalf("Teachers() failed: %v", err)
	}
	if len(teachers) != 2 {
		t.Fatalf("Teachers() returned %d users, want 2", len(teachers))
	}
	if teachers[0].ID != t1.ID || teachers[1].ID != t2.ID {
		t.Errorf("Teachers() = %+v, want [%d %d] in order", teachers, t1.ID, t2.ID)
	}
}

func TestService_StudentByName(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	student := createUser(t, repo, "Alice Johnson", "alice@test.cd", "passw0rd", user.TypeStudent)
	createUser(t, repo, "Prof. Stone", "stone@test.cd", "s3cret", user.TypeTeacher)

	got, err := svc.StudentByName(ctx, "Alice Johnson")
	if err != nil {
		t.Fatalf("StudentByName() failed: %v", err)
	}
	if got.ID != student.ID {
		t.Errorf("StudentByName() ID = %d, want %d", got.ID, student.ID)
	}

	// teachers are not looked up by name
	if _, err = svc.StudentByName(ctx, "Prof. Stone"); errors.Cause(err) != user.ErrNotFound {
		t.Errorf("StudentByName() error = %v, want %v", err, user.ErrNotFound)
	}
}
