package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/announcement"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/live"
	"github.com/trezcool/kelasi/core/user"
)

type (
	Options struct {
		Addr           string
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		UserSvc         user.Service
		CourseSvc       course.Service
		SessionSvc      course.SessionService
		AnnouncementSvc announcement.Service
		AttendanceSvc   attendance.Service
		Broker          *live.Broker
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	initJWTConfig(opts.Conf)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerCourseAPI(v1, jwt, s.opts.CourseSvc, s.opts.SessionSvc, s.opts.AnnouncementSvc, s.opts.UserSvc)
	registerSessionAPI(v1, jwt, s.opts.SessionSvc, s.opts.AttendanceSvc)
	registerAnnouncementAPI(v1, jwt, s.opts.AnnouncementSvc)
	registerAttendanceAPI(v1, jwt, s.opts.AttendanceSvc)
	registerLiveAPI(v1, s.opts.SessionSvc, s.opts.UserSvc, s.opts.Broker, s.opts.Conf, s.opts.Logger)
}

func (s *server) Start() error {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	if s.opts.Broker != nil {
		s.opts.Broker.Shutdown()
	}
	return s.app.Shutdown(ctx)
}

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// signalShutdown triggers a graceful shutdown; called on unrecoverable errors.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Kelasi API!")
}
