package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/raresamza/mythesis/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

// query returns users of the given type ordered by id.
func (repo *userRepository) query(typ string) []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		if usr.Type == typ {
			users = append(users, *usr)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *userRepository) QueryTeachers(_ context.Context) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(user.TypeTeacher), nil
}

func (repo *userRepository) QueryStudents(_ context.Context) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(user.TypeStudent), nil
}

func (repo *userRepository) GetTeacherByID(_ context.Context, id int) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if usr, ok := repo.db.users[id]; ok && usr.Type == user.TypeTeacher {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) findByCredentials(typ, email, password string) (user.User, error) {
	for _, usr := range repo.query(typ) {
		if usr.Email == email && usr.Password == password {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FindTeacherByCredentials(_ context.Context, email, password string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.findByCredentials(user.TypeTeacher, email, password)
}

func (repo *userRepository) FindStudentByCredentials(_ context.Context, email, password string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.findByCredentials(user.TypeStudent, email, password)
}

func (repo *userRepository) GetStudentByName(_ context.Context, name string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.query(user.TypeStudent) {
		if usr.Name == name {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateOrCreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.users {
		if existing.Email == usr.Email {
			existing.Name = usr.Name
			existing.Password = usr.Password
			existing.Type = usr.Type
			return *existing, nil
		}
	}

	repo.db.userPK++
	usr.ID = repo.db.userPK
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = time.Now().UTC()
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}
