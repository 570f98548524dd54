package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/raresamza/mythesis/core/thesis"
	emailsvc "github.com/raresamza/mythesis/services/email"
)

func (env *testEnv) proposeRequest(t *testing.T, title string) thesis.Request {
	t.Helper()
	req, err := env.thesisSvc.Propose(context.Background(), env.studentSession(), thesis.NewRequest{
		Title:       title,
		Description: "a study",
		TeacherID:   env.teacher.ID,
	})
	if err != nil {
		t.Fatalf("Propose() failed: %v", err)
	}
	return req
}

func TestThesisApi_create(t *testing.T) {
	env := setup(t)
	path := "/v1/requests"
	token := getToken(t, env, env.studentSession())

	tests := []httpTest{
		{
			name: "anonymous proposal rejected", method: http.MethodPost, path: path,
			body:     []byte(`{"title": "Graph Databases", "teacherId": 1}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "teacher selection is mandatory", method: http.MethodPost, path: path,
			body: []byte(`{"title": "Graph Databases"}`), token: token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"teacherId": "this field is required"}),
		},
		{
			name: "title is mandatory", method: http.MethodPost, path: path,
			body: []byte(`{"teacherId": 1}`), token: token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name: "student proposes", method: http.MethodPost, path: path,
			body: []byte(fmt.Sprintf(`{"title": "Graph Databases", "description": "a study", "teacherId": %d, "status": "approved"}`, env.teacher.ID)),
			token: token, wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var created thesis.Request
				if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if created.Status != thesis.StatusPending { // client-sent status is ignored
					t.Errorf("created status = %q, want %q", created.Status, thesis.StatusPending)
				}
				if created.Student != env.student.Name {
					t.Errorf("created student = %q, want %q", created.Student, env.student.Name)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// rejected proposals never touch storage
	reqs, err := env.thesisRepo.QueryAllRequests(context.Background())
	if err != nil {
		t.Fatalf("QueryAllRequests() failed: %v", err)
	}
	if len(reqs) != 1 {
		t.Errorf("stored %d requests, want 1", len(reqs))
	}
}

func TestThesisApi_query(t *testing.T) {
	env := setup(t)

	req1 := env.proposeRequest(t, "Graph Databases")
	req2 := env.proposeRequest(t, "Quantum Parsing")

	tests := []httpTest{
		{
			name: "all requests", method: http.MethodGet, path: "/v1/requests",
			wantCode: http.StatusOK, wantData: marchallList(t, req1, req2),
		},
		{
			name: "by teacher", method: http.MethodGet,
			path:     fmt.Sprintf("/v1/requests?teacherId=%d", env.teacher.ID),
			wantCode: http.StatusOK, wantData: marchallList(t, req1, req2),
		},
		{
			name: "by unknown teacher", method: http.MethodGet, path: "/v1/requests?teacherId=404",
			wantCode: http.StatusOK, wantData: []byte(`[]`),
		},
		{
			name: "bad teacher id", method: http.MethodGet, path: "/v1/requests?teacherId=lol",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"teacherId": "must be an integer"}),
		},
		{
			name: "by student", method: http.MethodGet, path: "/v1/requests?student=Alice%20Johnson",
			wantCode: http.StatusOK, wantData: marchallList(t, req1, req2),
		},
		{
			name: "by unknown student", method: http.MethodGet, path: "/v1/requests?student=Ghost",
			wantCode: http.StatusOK, wantData: []byte(`[]`),
		},
		{
			name: "retrieve one", method: http.MethodGet, path: fmt.Sprintf("/v1/requests/%d", req1.ID),
			wantCode: http.StatusOK, wantData: marchallObj(t, req1),
		},
		{
			name: "retrieve unknown", method: http.MethodGet, path: "/v1/requests/404",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "retrieve non-numeric id", method: http.MethodGet, path: "/v1/requests/lol",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestThesisApi_decide(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	token := getToken(t, env, env.teacherSession())

	toApprove := env.proposeRequest(t, "Graph Databases")
	toDeny := env.proposeRequest(t, "Quantum Parsing")

	approvePath := fmt.Sprintf("/v1/requests/%d/approve", toApprove.ID)
	denyPath := fmt.Sprintf("/v1/requests/%d/deny", toDeny.ID)

	t.Run("anonymous decision rejected", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPatch, path: approvePath,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		}
		req, rec := newRequest(tt.method, tt.path)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("approve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, approvePath, token)
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got thesis.Request
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if got.Status != thesis.StatusApproved {
			t.Errorf("status = %q, want %q", got.Status, thesis.StatusApproved)
		}
		if got.Supervisor != env.teacher.Name {
			t.Errorf("supervisor = %q, want %q", got.Supervisor, env.teacher.Name)
		}

		if len(emailsvc.SentMessages) != 1 {
			t.Errorf("sent %d emails, want 1", len(emailsvc.SentMessages))
		}
		notifs, err := env.notifSvc.ForUser(ctx, env.student.ID)
		if err != nil {
			t.Fatalf("ForUser() failed: %v", err)
		}
		if len(notifs) != 1 {
			t.Errorf("created %d notifications, want 1", len(notifs))
		}
	})

	t.Run("second decision conflicts", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPatch, path: approvePath, token: token,
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "request has already been decided"}),
		}
		req, rec := newAuthRequest(tt.method, tt.path, tt.token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("deny", func(t *testing.T) {
		emailsvc.ClearSentMessages()

		req, rec := newAuthRequest(http.MethodPatch, denyPath, token)
		env.app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got thesis.Request
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if got.Status != thesis.StatusDenied {
			t.Errorf("status = %q, want %q", got.Status, thesis.StatusDenied)
		}
		if got.Supervisor != "" {
			t.Errorf("supervisor = %q, want empty", got.Supervisor)
		}
		if len(emailsvc.SentMessages) != 0 {
			t.Errorf("sent %d emails, want 0", len(emailsvc.SentMessages))
		}
	})

	t.Run("decide unknown request", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPatch, path: "/v1/requests/404/deny", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		}
		req, rec := newAuthRequest(tt.method, tt.path, tt.token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func TestThesisApi_comments(t *testing.T) {
	env := setup(t)

	req := env.proposeRequest(t, "Graph Databases")
	path := fmt.Sprintf("/v1/requests/%d/comments", req.ID)
	studentToken := getToken(t, env, env.studentSession())
	teacherToken := getToken(t, env, env.teacherSession())

	t.Run("anonymous comment rejected", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPost, path: path, body: []byte(`{"text": "hi"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		}
		hreq, rec := newRequest(tt.method, tt.path, tt.body)
		env.app.ServeHTTP(rec, hreq)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("blank comment rejected", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPost, path: path, body: []byte(`{"text": "   "}`), token: studentToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"text": "this field is required"}),
		}
		hreq, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
		env.app.ServeHTTP(rec, hreq)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("thread preserves order", func(t *testing.T) {
		hreq, rec := newAuthRequest(http.MethodPost, path, studentToken, []byte(`{"text": "Any news?"}`))
		env.app.ServeHTTP(rec, hreq)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		hreq, rec = newAuthRequest(http.MethodPost, path, teacherToken, []byte(`{"text": "Looking at it."}`))
		env.app.ServeHTTP(rec, hreq)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var got thesis.Request
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		want := []thesis.Comment{
			{Author: env.student.Name, Text: "Any news?"},
			{Author: env.teacher.Name, Text: "Looking at it."},
		}
		if len(got.Comments) != len(want) {
			t.Fatalf("got %d comments, want %d", len(got.Comments), len(want))
		}
		for i, c := range want {
			if got.Comments[i] != c {
				t.Errorf("comment[%d] = %+v, want %+v", i, got.Comments[i], c)
			}
		}
	})
}

func TestThesisApi_theses(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	pending := env.proposeRequest(t, "Pending Work")
	approved := env.proposeRequest(t, "Approved Work")
	if _, err := env.thesisSvc.Approve(ctx, approved.ID, env.teacher.ID); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}

	tt := httpTest{
		name: "roster lists every request", method: http.MethodGet, path: "/v1/theses",
		wantCode: http.StatusOK,
		wantData: marchallList(t,
			thesis.Thesis{ID: pending.ID, Title: pending.Title, Description: pending.Description},
			thesis.Thesis{ID: approved.ID, Title: approved.Title, Description: approved.Description, Supervisor: env.teacher.Name},
		),
	}
	t.Run(tt.name, func(t *testing.T) {
		req, rec := newRequest(tt.method, tt.path)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
