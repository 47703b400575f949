package echoapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/trezcool/kelasi/core/user"
)

func dialLive(t *testing.T, ts *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/live"

	hdr := http.Header{}
	if token != "" {
		hdr.Set("Authorization", "Bearer "+token)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, hdr)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()
	var evt wsEvent
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	return evt
}

func Test_liveApi_startBroadcastsCodes(t *testing.T) {
	app := setup(t)
	prof := app.createUser(t, "Grace", "grace@kelasi.test", user.RoleProfessor)
	stu := app.createUser(t, "Ada", "ada@kelasi.test", user.RoleStudent)
	crs := app.createCourse(t, prof, "Compilers")
	app.enroll(t, crs, stu)
	sess := app.createSession(t, crs, prof, "Week 1")

	ts := httptest.NewServer(app.server)
	defer ts.Close()

	conn := dialLive(t, ts, getToken(t, prof))

	if err := conn.WriteJSON(wsEvent{Event: eventStartAttendance, SessionID: sess.ID}); err != nil {
		t.Fatalf("writing start event: %v", err)
	}

	evt := readEvent(t, conn)
	if evt.Event != eventCodeUpdate {
		t.Fatalf("event = %q; want %q (error: %s)", evt.Event, eventCodeUpdate, evt.Error)
	}
	if evt.SessionID != sess.ID || evt.Code == "" {
		t.Fatalf("unexpected code update: %+v", evt)
	}

	// broadcast code matches the broker's current one
	cur, ok := app.broker.Current(sess.ID)
	if !ok || cur != evt.Code {
		t.Errorf("broker code = %q (live=%v); want %q", cur, ok, evt.Code)
	}

	// the student can check in with the broadcast code
	if _, err := app.attSvc.Mark(ctxb(), sess.ID, stu.ID, evt.Code); err != nil {
		t.Errorf("Mark() with broadcast code: %v", err)
	}

	// stopping ends the window
	if err := conn.WriteJSON(wsEvent{Event: eventStopAttendance, SessionID: sess.ID}); err != nil {
		t.Fatalf("writing stop event: %v", err)
	}
	waitFor(t, func() bool {
		_, live := app.broker.Current(sess.ID)
		return !live
	})
}

func Test_liveApi_studentCannotStart(t *testing.T) {
	app := setup(t)
	prof := app.createUser(t, "Grace", "grace@kelasi.test", user.RoleProfessor)
	stu := app.createUser(t, "Ada", "ada@kelasi.test", user.RoleStudent)
	crs := app.createCourse(t, prof, "Compilers")
	app.enroll(t, crs, stu)
	sess := app.createSession(t, crs, prof, "Week 1")

	ts := httptest.NewServer(app.server)
	defer ts.Close()

	conn := dialLive(t, ts, getToken(t, stu))

	if err := conn.WriteJSON(wsEvent{Event: eventStartAttendance, SessionID: sess.ID}); err != nil {
		t.Fatalf("writing start event: %v", err)
	}

	evt := readEvent(t, conn)
	if evt.Event != eventConnectionError {
		t.Fatalf("event = %q; want %q", evt.Event, eventConnectionError)
	}
	if _, live := app.broker.Current(sess.ID); live {
		t.Error("no window should be live")
	}
}

func Test_liveApi_studentCannotStop(t *testing.T) {
	app := setup(t)
	prof := app.createUser(t, "Grace", "grace@kelasi.test", user.RoleProfessor)
	stu := app.createUser(t, "Ada", "ada@kelasi.test", user.RoleStudent)
	crs := app.createCourse(t, prof, "Compilers")
	app.enroll(t, crs, stu)
	sess := app.createSession(t, crs, prof, "Week 1")

	app.broker.Start(sess.ID, nil)

	ts := httptest.NewServer(app.server)
	defer ts.Close()

	conn := dialLive(t, ts, getToken(t, stu))

	if err := conn.WriteJSON(wsEvent{Event: eventStopAttendance, SessionID: sess.ID}); err != nil {
		t.Fatalf("writing stop event: %v", err)
	}

	evt := readEvent(t, conn)
	if evt.Event != eventConnectionError {
		t.Fatalf("event = %q; want %q", evt.Event, eventConnectionError)
	}
	if _, live := app.broker.Current(sess.ID); !live {
		t.Error("window should still be live")
	}
}

func Test_liveApi_unauthenticated(t *testing.T) {
	app := setup(t)

	ts := httptest.NewServer(app.server)
	defer ts.Close()

	conn := dialLive(t, ts, "")
	evt := readEvent(t, conn)
	if evt.Event != eventConnectionError {
		t.Fatalf("event = %q; want %q", evt.Event, eventConnectionError)
	}
}

func Test_liveApi_disconnectStopsSession(t *testing.T) {
	app := setup(t)
	prof := app.createUser(t, "Grace", "grace@kelasi.test", user.RoleProfessor)
	crs := app.createCourse(t, prof, "Compilers")
	sess := app.createSession(t, crs, prof, "Week 1")

	ts := httptest.NewServer(app.server)
	defer ts.Close()

	conn := dialLive(t, ts, getToken(t, prof))
	if err := conn.WriteJSON(wsEvent{Event: eventStartAttendance, SessionID: sess.ID}); err != nil {
		t.Fatalf("writing start event: %v", err)
	}
	readEvent(t, conn) // initial code

	_ = conn.Close()

	// the presenter dropping the socket ends the live window
	waitFor(t, func() bool {
		_, live := app.broker.Current(sess.ID)
		return !live
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
