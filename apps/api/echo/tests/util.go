package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/raresamza/mythesis/apps/api/echo"
	"github.com/raresamza/mythesis/core"
	"github.com/raresamza/mythesis/core/notification"
	"github.com/raresamza/mythesis/core/thesis"
	"github.com/raresamza/mythesis/core/user"
	emailsvc "github.com/raresamza/mythesis/services/email"
	logsvc "github.com/raresamza/mythesis/services/logger"
	inmemdb "github.com/raresamza/mythesis/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	app  Server
	conf *core.Config

	usrRepo    user.Repository
	thesisRepo thesis.Repository
	notifSvc   *notification.Service
	thesisSvc  *thesis.Service

	teacher user.User
	student user.User
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Sendgrid.DecisionTemplateID = "d-thesis-decision"

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	// set up DB & repos
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	thesisRepo := inmemdb.NewRequestRepository(db)
	notifRepo := inmemdb.NewNotificationRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(usrRepo)
	notifSvc := notification.NewService(notifRepo)
	thesisSvc := thesis.NewService(thesisRepo, usrSvc, notifSvc, mailSvc, logger, conf)

	ctx := context.Background()
	teacher, err := usrRepo.UpdateOrCreateUser(ctx, user.User{
		Name: "Prof. Stone", Email: "stone@test.cd", Password: "s3cret", Type: user.TypeTeacher,
	})
	if err != nil {
		t.Fatalf("creating teacher failed: %v", err)
	}
	student, err := usrRepo.UpdateOrCreateUser(ctx, user.User{
		Name: "Alice Johnson", Email: "alice@test.cd", Password: "passw0rd", Type: user.TypeStudent,
	})
	if err != nil {
		t.Fatalf("creating student failed: %v", err)
	}

	emailsvc.ClearSentMessages()

	// set up server
	app := NewServer(&Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		ThesisSvc:      thesisSvc,
		NotifSvc:       notifSvc,
	})

	return &testEnv{
		app:        app,
		conf:       conf,
		usrRepo:    usrRepo,
		thesisRepo: thesisRepo,
		notifSvc:   notifSvc,
		thesisSvc:  thesisSvc,
		teacher:    teacher,
		student:    student,
	}
}

func (env *testEnv) teacherSession() user.Session {
	return user.Session{ID: env.teacher.ID, Name: env.teacher.Name, Email: env.teacher.Email, Type: env.teacher.Type}
}

func (env *testEnv) studentSession() user.Session {
	return user.Session{ID: env.student.ID, Name: env.student.Name, Email: env.student.Email, Type: env.student.Type}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, env *testEnv, sess user.Session) string {
	t.Helper()
	token, err := GenerateToken(GetSessionClaims(sess, env.conf), env.conf)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
