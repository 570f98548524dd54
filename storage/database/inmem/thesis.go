package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/raresamza/mythesis/core/thesis"
)

type requestRepository struct {
	db *DB
}

var _ thesis.Repository = (*requestRepository)(nil)

func NewRequestRepository(db *DB) thesis.Repository {
	return &requestRepository{db: db}
}

func (repo *requestRepository) query(match func(thesis.Request) bool) []thesis.Request {
	reqs := make([]thesis.Request, 0, len(repo.db.requests))
	for _, req := range repo.db.requests {
		if match(*req) {
			reqs = append(reqs, copyRequest(*req))
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	return reqs
}

// copyRequest detaches the comment slice so callers cannot mutate stored state.
func copyRequest(req thesis.Request) thesis.Request {
	if req.Comments != nil {
		comments := make([]thesis.Comment, len(req.Comments))
		copy(comments, req.Comments)
		req.Comments = comments
	}
	return req
}

func (repo *requestRepository) CreateRequest(_ context.Context, req thesis.Request) (thesis.Request, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.requestPK++
	req.ID = repo.db.requestPK
	stored := copyRequest(req)
	repo.db.requests[req.ID] = &stored
	return copyRequest(stored), nil
}

func (repo *requestRepository) GetRequestByID(_ context.Context, id int) (thesis.Request, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if req, ok := repo.db.requests[id]; ok {
		return copyRequest(*req), nil
	}
	return thesis.Request{}, thesis.ErrNotFound
}

func (repo *requestRepository) QueryAllRequests(_ context.Context) ([]thesis.Request, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(func(thesis.Request) bool { return true }), nil
}

func (repo *requestRepository) FilterRequestsByTeacherID(_ context.Context, teacherID int) ([]thesis.Request, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(func(req thesis.Request) bool { return req.TeacherID == teacherID }), nil
}

func (repo *requestRepository) FilterRequestsByStudent(_ context.Context, student string) ([]thesis.Request, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(func(req thesis.Request) bool { return req.Student == student }), nil
}

func (repo *requestRepository) UpdateRequestStatus(_ context.Context, id int, status, supervisor string) (thesis.Request, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	req, ok := repo.db.requests[id]
	if !ok {
		return thesis.Request{}, thesis.ErrNotFound
	}
	req.Status = status
	req.Supervisor = supervisor
	req.UpdatedAt = time.Now().UTC()
	return copyRequest(*req), nil
}

func (repo *requestRepository) UpdateRequestComments(_ context.Context, id int, comments []thesis.Comment) (thesis.Request, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	req, ok := repo.db.requests[id]
	if !ok {
		return thesis.Request{}, thesis.ErrNotFound
	}
	stored := make([]thesis.Comment, len(comments))
	copy(stored, comments)
	req.Comments = stored
	req.UpdatedAt = time.Now().UTC()
	return copyRequest(*req), nil
}
