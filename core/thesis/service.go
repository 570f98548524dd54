package thesis

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/raresamza/mythesis/core"
	"github.com/raresamza/mythesis/core/notification"
	"github.com/raresamza/mythesis/core/user"
)

var (
	ErrNotFound        = errors.New("request not found")
	ErrNoStudent       = errors.New("request does not have a student name")
	ErrStudentNotFound = errors.New("no matching student found")
	ErrAlreadyDecided  = errors.New("request has already been decided")
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, req Request) (Request, error)
		GetRequestByID(ctx context.Context, id int) (Request, error)
		QueryAllRequests(ctx context.Context) ([]Request, error)
		FilterRequestsByTeacherID(ctx context.Context, teacherID int) ([]Request, error)
		FilterRequestsByStudent(ctx context.Context, student string) ([]Request, error)
		// UpdateRequestStatus patches status and supervisor only.
		UpdateRequestStatus(ctx context.Context, id int, status, supervisor string) (Request, error)
		// UpdateRequestComments replaces the whole comment array
		// (last-writer-wins, merge semantics of the persistence service).
		UpdateRequestComments(ctx context.Context, id int, comments []Comment) (Request, error)
	}

	Service struct {
		repo     Repository
		usrSvc   *user.Service
		notifSvc *notification.Service
		mailSvc  core.EmailService
		logger   core.Logger
		conf     *core.Config
	}
)

func NewService(
	repo Repository,
	usrSvc *user.Service,
	notifSvc *notification.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		usrSvc:   usrSvc,
		notifSvc: notifSvc,
		mailSvc:  mailSvc,
		logger:   logger,
		conf:     conf,
	}
}

// Propose submits a new request on behalf of the session's student.
// Status is forced to pending regardless of input.
func (svc *Service) Propose(ctx context.Context, sess user.Session, nr NewRequest) (Request, error) {
	now := time.Now().UTC()
	req := Request{
		Title:       nr.Title,
		Description: nr.Description,
		Student:     sess.Name,
		TeacherID:   nr.TeacherID,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateRequest(ctx, req)
}

func (svc *Service) Get(ctx context.Context, id int) (Request, error) {
	return svc.repo.GetRequestByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Request, error) {
	return svc.repo.QueryAllRequests(ctx)
}

func (svc *Service) ForTeacher(ctx context.Context, teacherID int) ([]Request, error) {
	return svc.repo.FilterRequestsByTeacherID(ctx, teacherID)
}

func (svc *Service) ForStudent(ctx context.Context, student string) ([]Request, error) {
	return svc.repo.FilterRequestsByStudent(ctx, student)
}

// Theses projects all requests for the roster view. No status filter: pending
// and denied requests appear alongside approved ones, with no supervisor.
func (svc *Service) Theses(ctx context.Context) ([]Thesis, error) {
	reqs, err := svc.repo.QueryAllRequests(ctx)
	if err != nil {
		return nil, err
	}
	theses := make([]Thesis, 0, len(reqs))
	for _, req := range reqs {
		theses = append(theses, Thesis{
			ID:          req.ID,
			Title:       req.Title,
			Description: req.Description,
			Supervisor:  req.Supervisor,
		})
	}
	return theses, nil
}

// Approve transitions a pending request to approved, records the teacher's
// name as supervisor, then (best effort) emails the student and drops an
// in-app notification.
func (svc *Service) Approve(ctx context.Context, id, teacherID int) (Request, error) {
	return svc.decide(ctx, id, teacherID, StatusApproved)
}

// Deny transitions a pending request to denied. Supervisor stays empty and no
// email is sent; the student still gets an in-app notification.
func (svc *Service) Deny(ctx context.Context, id, teacherID int) (Request, error) {
	return svc.decide(ctx, id, teacherID, StatusDenied)
}

func (svc *Service) decide(ctx context.Context, id, teacherID int, status string) (Request, error) {
	req, err := svc.repo.GetRequestByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.IsDecided() {
		return Request{}, ErrAlreadyDecided
	}
	if req.Student == "" {
		return Request{}, ErrNoStudent
	}

	// The request records the student's display name, not an id; resolve it
	// with an exact-name lookup against the student collection.
	student, err := svc.usrSvc.StudentByName(ctx, req.Student)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Request{}, ErrStudentNotFound
		}
		return Request{}, errors.Wrap(err, "finding student by name")
	}

	teacher, err := svc.usrSvc.TeacherByID(ctx, teacherID)
	if err != nil {
		return Request{}, errors.Wrap(err, "finding teacher by ID")
	}

	var supervisor string
	if status == StatusApproved {
		supervisor = teacher.Name
	}

	req, err = svc.repo.UpdateRequestStatus(ctx, id, status, supervisor)
	if err != nil {
		return Request{}, errors.Wrap(err, "updating request")
	}

	// Side effects are not transactional with the status update: a failure
	// here is logged and the already-committed decision stands.
	svc.notifyDecision(ctx, req, student, teacher)
	return req, nil
}

func (svc *Service) notifyDecision(ctx context.Context, req Request, student, teacher user.User) {
	if req.Status == StatusApproved {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:         []mail.Address{{Name: student.Name, Address: student.Email}},
			Subject:    fmt.Sprintf("Your thesis proposal has been %s", req.Status),
			TemplateID: svc.conf.Sendgrid.DecisionTemplateID,
			TemplateData: map[string]interface{}{
				"student_name": student.Name,
				"thesis_title": req.Title,
				"status":       req.Status,
				"teacher_name": teacher.Name,
				"email":        student.Email,
			},
		})
	}

	decidedBy := "your teacher"
	if req.Status == StatusApproved {
		decidedBy = req.Supervisor
	}
	msg := fmt.Sprintf("Your thesis request %q has been %s by %s.", req.Title, req.Status, decidedBy)
	if _, err := svc.notifSvc.Create(ctx, student.ID, msg); err != nil {
		svc.logger.Error(fmt.Sprintf("creating decision notification: %v", err), err)
	}
}

// AddComment appends to the request's comment thread. The whole array is
// re-read and written back: concurrent commenters are last-writer-wins.
func (svc *Service) AddComment(ctx context.Context, id int, author string, nc NewComment) (Request, error) {
	req, err := svc.repo.GetRequestByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	comments := append(req.Comments, Comment{Author: author, Text: nc.Text})
	return svc.repo.UpdateRequestComments(ctx, id, comments)
}
