package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/raresamza/mythesis/core/user"
)

const userColumns = "id, name, email, password, type, created_at"

type dbUser struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	Type      string    `db:"type"`
	CreatedAt time.Time `db:"created_at"`
}

func (u dbUser) toUser() user.User {
	return user.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		Type:      u.Type,
		CreatedAt: u.CreatedAt,
	}
}

type UserRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (repo *UserRepository) queryByType(ctx context.Context, typ string) ([]user.User, error) {
	var rows []dbUser
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT "+userColumns+" FROM users WHERE type = $1 ORDER BY id", typ)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo *UserRepository) QueryTeachers(ctx context.Context) ([]user.User, error) {
	return repo.queryByType(ctx, user.TypeTeacher)
}

func (repo *UserRepository) QueryStudents(ctx context.Context) ([]user.User, error) {
	return repo.queryByType(ctx, user.TypeStudent)
}

func (repo *UserRepository) GetTeacherByID(ctx context.Context, id int) (user.User, error) {
	var row dbUser
	err := repo.db.GetContext(ctx, &row,
		"SELECT "+userColumns+" FROM users WHERE type = $1 AND id = $2", user.TypeTeacher, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting teacher by ID")
	}
	return row.toUser(), nil
}

func (repo *UserRepository) findByCredentials(ctx context.Context, typ, email, password string) (user.User, error) {
	var row dbUser
	err := repo.db.GetContext(ctx, &row,
		"SELECT "+userColumns+" FROM users WHERE type = $1 AND email = $2 AND password = $3 ORDER BY id LIMIT 1",
		typ, email, password)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by credentials")
	}
	return row.toUser(), nil
}

func (repo *UserRepository) FindTeacherByCredentials(ctx context.Context, email, password string) (user.User, error) {
	return repo.findByCredentials(ctx, user.TypeTeacher, email, password)
}

func (repo *UserRepository) FindStudentByCredentials(ctx context.Context, email, password string) (user.User, error) {
	return repo.findByCredentials(ctx, user.TypeStudent, email, password)
}

func (repo *UserRepository) GetStudentByName(ctx context.Context, name string) (user.User, error) {
	var row dbUser
	err := repo.db.GetContext(ctx, &row,
		"SELECT "+userColumns+" FROM users WHERE type = $1 AND name = $2 ORDER BY id LIMIT 1",
		user.TypeStudent, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting student by name")
	}
	return row.toUser(), nil
}

func (repo *UserRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	var row dbUser
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO users (name, email, password, type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = $1, password = $3, type = $4
		RETURNING `+userColumns,
		usr.Name, usr.Email, usr.Password, usr.Type)
	if err != nil {
		return user.User{}, errors.Wrap(err, "upserting user")
	}
	return row.toUser(), nil
}
