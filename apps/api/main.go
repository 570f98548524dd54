package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/raresamza/mythesis/apps/api/echo"
	"github.com/raresamza/mythesis/core"
	"github.com/raresamza/mythesis/core/notification"
	"github.com/raresamza/mythesis/core/thesis"
	"github.com/raresamza/mythesis/core/user"
	emailsvc "github.com/raresamza/mythesis/services/email"
	logsvc "github.com/raresamza/mythesis/services/logger"
	"github.com/raresamza/mythesis/storage/database"
	inmemdb "github.com/raresamza/mythesis/storage/database/inmem"
	sqlxrepos "github.com/raresamza/mythesis/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

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

	// set up storage & services
	var (
		usrRepo    user.Repository
		thesisRepo thesis.Repository
		notifRepo  notification.Repository
		mailSvc    core.EmailService
	)
	if conf.Debug {
		db := inmemdb.NewDB()
		usrRepo = inmemdb.NewUserRepository(db)
		thesisRepo = inmemdb.NewRequestRepository(db)
		notifRepo = inmemdb.NewNotificationRepository(db)
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
		usrRepo = sqlxrepos.NewUserRepository(db)
		thesisRepo = sqlxrepos.NewRequestRepository(db)
		notifRepo = sqlxrepos.NewNotificationRepository(db)
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(usrRepo)
	notifSvc := notification.NewService(notifRepo)
	thesisSvc := thesis.NewService(thesisRepo, usrSvc, notifSvc, mailSvc, logger, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Addr:           conf.Server.Address(),
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		ThesisSvc:      thesisSvc,
		NotifSvc:       notifSvc,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API server listening on %s", conf.Server.Address()))
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
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

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
