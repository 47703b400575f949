package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/user"
)

func Test_courseApi_create(t *testing.T) {
	app := setup(t)
	prof := app.createUser(t, "Grace", "grace@kelasi.test", user.RoleProfessor)
	stu := app.createUser(t, "Ada", "ada@kelasi.test", user.RoleStudent)

	tests := []httpTest{
		{
			name:   "professor creates course",
			method: http.MethodPost, path: "/v1/courses",
			body:     marshallObj(t, map[string]string{"name": "Compilers"}),
			token:    getToken(t, prof),
			wantCode: http.StatusCreated,
		},
		{
			name:   "student cannot create",
			method: http.MethodPost, path: "/v1/courses",
			body:     marshallObj(t, map[string]string{"name": "Nope"}),
			token:    getToken(t, stu),
			wantCode: http.StatusForbidden,
		},
		{
			name:   "name required",
			method: http.MethodPost, path: "/v1/courses",
			body:     marshallObj(t, map[string]string{}),
			token:    getToken(t, prof),
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "requires auth",
			method: http.MethodPost, path: "/v1/courses",
			body:     marshallObj(t, map[string]string{"name": "Nope"}),
			wantCode: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_joinAndAccess(t *testing.T) {
	app := setup(t)
	prof := app.createUser(t, "Grace", "grace@kelasi.test", user.RoleProfessor)
	stu := app.createUser(t, "Ada", "ada@kelasi.test", user.RoleStudent)
	outsider := app.createUser(t, "Alan", "alan@kelasi.test", user.RoleStudent)
	crs := app.createCourse(t, prof, "Compilers")

	stuToken := getToken(t, stu)

	t.Run("join by code", func(t *testing.T) {
		body := marshallObj(t, map[string]string{"join_code": crs.JoinCode})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/join", stuToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got course.Course
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if got.ID != crs.ID {
			t.Errorf("joined course %q; want %q", got.ID, crs.ID)
		}
	})

	t.Run("join twice conflicts", func(t *testing.T) {
		body := marshallObj(t, map[string]string{"join_code": crs.JoinCode})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/join", stuToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		body := marshallObj(t, map[string]string{"join_code": "ZZZZZ9"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/join", stuToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("member reads course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID, stuToken)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("outsider cannot read course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID, getToken(t, outsider))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("student cannot update course", func(t *testing.T) {
		body := marshallObj(t, map[string]string{"name": "Hacked"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID, stuToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("leave", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/leave", stuToken)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusNoContent)
		}
	})
}

func Test_courseApi_sessions(t *testing.T) {
	app := setup(t)
	prof := app.createUser(t, "Grace", "grace@kelasi.test", user.RoleProfessor)
	stu := app.createUser(t, "Ada", "ada@kelasi.test", user.RoleStudent)
	crs := app.createCourse(t, prof, "Compilers")
	app.enroll(t, crs, stu)

	profToken := getToken(t, prof)
	stuToken := getToken(t, stu)

	var sess course.Session

	t.Run("professor creates session", func(t *testing.T) {
		body := marshallObj(t, map[string]string{"label": "Week 1"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/sessions", profToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d; want %d; body = %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
	})

	t.Run("student cannot create session", func(t *testing.T) {
		body := marshallObj(t, map[string]string{"label": "Week 2"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/sessions", stuToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("member lists sessions", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/sessions", stuToken)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want %d", rec.Code, http.StatusOK)
		}
		var sessions []course.Session
		if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(sessions) != 1 {
			t.Errorf("got %d sessions; want 1", len(sessions))
		}
	})

	t.Run("professor cancels session", func(t *testing.T) {
		body := marshallObj(t, map[string]interface{}{"label": sess.Label, "is_cancelled": true})
		req, rec := newAuthRequest(http.MethodPut, "/v1/sessions/"+sess.ID, profToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got course.Session
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if !got.IsCancelled {
			t.Error("expected session to be cancelled")
		}
	})

	t.Run("student cannot read session detail", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/sessions/"+sess.ID, stuToken)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

func Test_courseApi_announcements(t *testing.T) {
	app := setup(t)
	prof := app.createUser(t, "Grace", "grace@kelasi.test", user.RoleProfessor)
	stu := app.createUser(t, "Ada", "ada@kelasi.test", user.RoleStudent)
	crs := app.createCourse(t, prof, "Compilers")
	app.enroll(t, crs, stu)

	profToken := getToken(t, prof)
	stuToken := getToken(t, stu)

	t.Run("professor posts announcement", func(t *testing.T) {
		body := marshallObj(t, map[string]string{"title": "Exam", "content": "Next friday."})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/announcements", profToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d; want %d; body = %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
	})

	t.Run("student cannot post", func(t *testing.T) {
		body := marshallObj(t, map[string]string{"title": "Party", "content": "My place."})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/announcements", stuToken, body)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("member lists announcements", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/announcements", stuToken)
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusOK)
		}
	})
}
