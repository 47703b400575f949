package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/kelasi/apps/api/echo"
	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/announcement"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/live"
	"github.com/trezcool/kelasi/core/user"
	emailsvc "github.com/trezcool/kelasi/services/email"
	logsvc "github.com/trezcool/kelasi/services/logger"
	"github.com/trezcool/kelasi/storage/database"
	sqlxrepos "github.com/trezcool/kelasi/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up repositories
	usrRepo := sqlxrepos.NewUserRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	sessRepo := sqlxrepos.NewSessionRepository(db)
	annRepo := sqlxrepos.NewAnnouncementRepository(db)
	attRepo := sqlxrepos.NewAttendanceRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, false)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	broker := live.NewBroker(live.RotationInterval, logger)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	crsSvc := course.NewService(crsRepo)
	sessSvc := course.NewSessionService(sessRepo, crsRepo)
	annSvc := announcement.NewService(annRepo, crsRepo)
	attSvc := attendance.NewService(attRepo, crsRepo, sessRepo, usrRepo, broker)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe("localhost:4000", http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.Options{
			Addr:            conf.Server.Address(),
			Conf:            conf,
			Logger:          logger,
			UserSvc:         usrSvc,
			CourseSvc:       crsSvc,
			SessionSvc:      sessSvc,
			AnnouncementSvc: annSvc,
			AttendanceSvc:   attSvc,
			Broker:          broker,
		},
	)

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-errs:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
