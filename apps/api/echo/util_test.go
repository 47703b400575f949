package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"
	"time"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/announcement"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/live"
	"github.com/trezcool/kelasi/core/user"
	emailsvc "github.com/trezcool/kelasi/services/email"
	dummydb "github.com/trezcool/kelasi/storage/database/dummy"
)

func ctxb() context.Context { return context.Background() }

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testConfig() *core.Config {
	return &core.Config{
		Env:                       "test",
		TestMode:                  true,
		AppName:                   "Kelasi",
		SecretKey:                 []byte("s3cr3t-t3st-k3y"),
		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmail:          mail.Address{Name: "Kelasi", Address: "noreply@kelasi.test"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

type testApp struct {
	server Server
	conf   *core.Config
	broker *live.Broker

	usrSvc  user.Service
	crsSvc  course.Service
	sessSvc course.SessionService
	annSvc  announcement.Service
	attSvc  attendance.Service

	usrRepo  user.Repository
	crsRepo  course.Repository
	sessRepo course.SessionRepository
}

func setup(t *testing.T) *testApp {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	conf := testConfig()

	usrRepo := dummydb.NewUserRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	sessRepo := dummydb.NewSessionRepository(db)
	annRepo := dummydb.NewAnnouncementRepository(db)
	attRepo := dummydb.NewAttendanceRepository(db)

	mailSvc := emailsvc.NewConsoleService(conf, true /* disableOutput */)
	broker := live.NewBroker(time.Hour, nopLogger{}) // no surprise rotations in tests
	t.Cleanup(broker.Shutdown)

	app := &testApp{
		conf:     conf,
		broker:   broker,
		usrSvc:   user.NewServiceMock(usrRepo, mailSvc, conf),
		crsSvc:   course.NewService(crsRepo),
		sessSvc:  course.NewSessionService(sessRepo, crsRepo),
		annSvc:   announcement.NewService(annRepo, crsRepo),
		attSvc:   attendance.NewService(attRepo, crsRepo, sessRepo, usrRepo, broker),
		usrRepo:  usrRepo,
		crsRepo:  crsRepo,
		sessRepo: sessRepo,
	}
	app.server = NewServer(&Options{
		Conf:            conf,
		Logger:          nopLogger{},
		DisableReqLogs:  true,
		UserSvc:         app.usrSvc,
		CourseSvc:       app.crsSvc,
		SessionSvc:      app.sessSvc,
		AnnouncementSvc: app.annSvc,
		AttendanceSvc:   app.attSvc,
		Broker:          broker,
	})
	return app
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

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("%s %s: code = %d; want %d; body = %s", tt.method, tt.path, rec.Code, tt.wantCode, rec.Body.String())
		return
	}
	if tt.wantData == nil {
		return
	}

	var got, want interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if err := json.Unmarshal(tt.wantData, &want); err != nil {
		t.Fatalf("unmarshalling expected data: %v", err)
	}
	gotB, _ := json.Marshal(got)
	wantB, _ := json.Marshal(want)
	if !bytes.Equal(gotB, wantB) {
		t.Errorf("%s %s: body = %s; want %s", tt.method, tt.path, gotB, wantB)
	}
}

func (app *testApp) createUser(t *testing.T, firstName, email, role string) user.User {
	t.Helper()
	usr, err := app.usrSvc.Register(ctxb(), user.NewUser{
		FirstName:       firstName,
		LastName:        "Doe",
		Email:           email,
		Role:            role,
		Password:        "Sup3rS3cr3t",
		PasswordConfirm: "Sup3rS3cr3t",
	})
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func (app *testApp) createCourse(t *testing.T, prof user.User, name string) course.Course {
	t.Helper()
	crs, err := app.crsSvc.Create(ctxb(), course.NewCourse{Name: name}, prof)
	if err != nil {
		t.Fatalf("createCourse(): %v", err)
	}
	return crs
}

func (app *testApp) enroll(t *testing.T, crs course.Course, stu user.User) {
	t.Helper()
	if _, err := app.crsSvc.JoinByCode(ctxb(), crs.JoinCode, stu.ID); err != nil {
		t.Fatalf("enroll(): %v", err)
	}
}

func (app *testApp) createSession(t *testing.T, crs course.Course, prof user.User, label string) course.Session {
	t.Helper()
	sess, err := app.sessSvc.Create(ctxb(), crs.ID, course.NewSession{Label: label}, prof.ID)
	if err != nil {
		t.Fatalf("createSession(): %v", err)
	}
	return sess
}
