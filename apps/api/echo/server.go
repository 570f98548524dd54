package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/raresamza/mythesis/core"
	"github.com/raresamza/mythesis/core/notification"
	"github.com/raresamza/mythesis/core/thesis"
	"github.com/raresamza/mythesis/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc   *user.Service
		ThesisSvc *thesis.Service
		NotifSvc  *notification.Service

		// SignalShutdown is called when an unrecoverable error is caught so
		// the app can shed load and stop gracefully.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(ctx context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
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

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerUserAPI(v1, s.opts.UserSvc, conf, s.opts.Validate)
	registerThesisAPI(v1, jwt, s.opts.ThesisSvc, s.opts.Validate)
	registerNotificationAPI(v1, jwt, s.opts.NotifSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to MyThesis API!")
}
