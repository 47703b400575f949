package echoapi

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/live"
	"github.com/trezcool/kelasi/core/user"
)

// websocket events
const (
	eventStartAttendance = "start-attendance"
	eventStopAttendance  = "stop-attendance"
	eventCodeUpdate      = "code-update"
	eventConnectionError = "connection-error"
)

type (
	// wsEvent is the envelope for every message exchanged on the live socket.
	wsEvent struct {
		Event     string `json:"event"`
		SessionID string `json:"session_id,omitempty"`
		Code      string `json:"code,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	liveApi struct {
		sessSvc  course.SessionService
		usrSvc   user.Service
		broker   *live.Broker
		logger   core.Logger
		upgrader websocket.Upgrader
	}

	// liveConn serializes writes to one websocket connection; broker rotations
	// and read-loop replies arrive from different goroutines.
	liveConn struct {
		mu   sync.Mutex
		conn *websocket.Conn

		usr user.User
		// activeSessionID is the session this connection is broadcasting,
		// empty when none. Only touched from the read loop.
		activeSessionID string
	}
)

func registerLiveAPI(
	g *echo.Group,
	sessSvc course.SessionService,
	usrSvc user.Service,
	broker *live.Broker,
	conf *core.Config,
	logger core.Logger,
) {
	api := liveApi{
		sessSvc: sessSvc,
		usrSvc:  usrSvc,
		broker:  broker,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if conf.Debug || conf.TestMode {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" { // non-browser clients
					return true
				}
				for _, allowed := range conf.Server.AllowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		},
	}

	// auth happens in-handler; the JWT middleware cannot inspect handshake cookies
	g.GET("/live", api.serve)
}

func (api *liveApi) serve(ctx echo.Context) error {
	conn, err := api.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return errors.Wrap(err, "upgrading connection")
	}

	lc := &liveConn{conn: conn}
	defer api.cleanup(lc)

	claims, err := verifyRequestToken(ctx.Request())
	if err != nil {
		_ = lc.writeEvent(wsEvent{Event: eventConnectionError, Error: "authentication failed"})
		return nil
	}
	usr, err := api.usrSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		_ = lc.writeEvent(wsEvent{Event: eventConnectionError, Error: "authentication failed"})
		return nil
	}
	lc.usr = usr

	api.readLoop(ctx, lc)
	return nil
}

// readLoop handles start/stop requests until the peer goes away.
func (api *liveApi) readLoop(ctx echo.Context, lc *liveConn) {
	for {
		var evt wsEvent
		if err := lc.conn.ReadJSON(&evt); err != nil {
			return // disconnected
		}

		switch evt.Event {
		case eventStartAttendance:
			api.startAttendance(ctx, lc, evt.SessionID)
		case eventStopAttendance:
			api.stopAttendance(ctx, lc, evt.SessionID)
		default:
			_ = lc.writeEvent(wsEvent{Event: eventConnectionError, Error: "unknown event: " + evt.Event})
		}
	}
}

func (api *liveApi) startAttendance(ctx echo.Context, lc *liveConn, sessionID string) {
	// the session lookup is owner-gated: only the course's professor passes
	sess, err := api.sessSvc.GetByID(ctx.Request().Context(), sessionID, lc.usr.ID)
	if err != nil {
		_ = lc.writeEvent(wsEvent{Event: eventConnectionError, SessionID: sessionID, Error: err.Error()})
		if cause := errors.Cause(err); cause == course.ErrNotCourseOwner || cause == course.ErrNotCourseMember {
			_ = lc.conn.Close() // wrong role gets no second try
		}
		return
	}

	// a new window replaces any previous one for this session
	lc.activeSessionID = sess.ID
	api.broker.Start(sess.ID, func(sessionID, code string) {
		if err := lc.writeEvent(wsEvent{Event: eventCodeUpdate, SessionID: sessionID, Code: code}); err != nil {
			api.broker.Stop(sessionID)
		}
	})
}

func (api *liveApi) stopAttendance(ctx echo.Context, lc *liveConn, sessionID string) {
	if sessionID == "" {
		sessionID = lc.activeSessionID
	}
	if sessionID == "" {
		return
	}
	// ownership was proven at start for this connection's own session; any
	// other session goes through the same owner-gated lookup as start
	if sessionID != lc.activeSessionID {
		if _, err := api.sessSvc.GetByID(ctx.Request().Context(), sessionID, lc.usr.ID); err != nil {
			_ = lc.writeEvent(wsEvent{Event: eventConnectionError, SessionID: sessionID, Error: err.Error()})
			if cause := errors.Cause(err); cause == course.ErrNotCourseOwner || cause == course.ErrNotCourseMember {
				_ = lc.conn.Close() // wrong role gets no second try
			}
			return
		}
	}
	api.broker.Stop(sessionID)
	if sessionID == lc.activeSessionID {
		lc.activeSessionID = ""
	}
}

// cleanup stops any window this connection was broadcasting; a professor
// dropping off the socket ends the live check-in.
func (api *liveApi) cleanup(lc *liveConn) {
	if lc.activeSessionID != "" {
		api.broker.Stop(lc.activeSessionID)
		api.logger.Debug("live: presenter disconnected, session stopped: " + lc.activeSessionID)
	}
	_ = lc.conn.Close()
}

func (lc *liveConn) writeEvent(evt wsEvent) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.conn.WriteJSON(evt)
}
