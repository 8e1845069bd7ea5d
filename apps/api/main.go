package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/am-3/campus/apps/api/echo"
	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/academic"
	"github.com/am-3/campus/core/attendance"
	"github.com/am-3/campus/core/booking"
	"github.com/am-3/campus/core/event"
	"github.com/am-3/campus/core/user"
	emailsvc "github.com/am-3/campus/services/email"
	facesvc "github.com/am-3/campus/services/face"
	logsvc "github.com/am-3/campus/services/logger"
	"github.com/am-3/campus/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	workDir, err := os.Getwd()
	errAndDie(err)
	conf, err := core.NewConfig(workDir)
	errAndDie(err)

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close database", err)
		}
	}()

	// set up repos
	usrRepo := database.NewUserRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	academicRepo := database.NewAcademicRepository(db)
	attendanceRepo := database.NewAttendanceRepository(db)
	eventRepo := database.NewEventRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	faceClient := facesvc.NewClient(conf)

	validate, translator := core.NewValidator()

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		&echoapi.Options{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       user.NewService(usrRepo),
			BookingSvc:    booking.NewService(bookingRepo, usrRepo, mailSvc, conf),
			AcademicSvc:   academic.NewService(academicRepo),
			AttendanceSvc: attendance.NewService(attendanceRepo, faceClient),
			EventSvc:      event.NewService(eventRepo),
			Validate:      validate,
			Translator:    translator,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
	case <-server.ShutdownSignal():
		logger.Info("integrity issue: Start shutdown...")
	}

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
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

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
