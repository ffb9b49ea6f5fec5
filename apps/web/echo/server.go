package echoadmin

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/session"
	"github.com/shulehq/shule-admin/services/lms"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Client     *lms.Client
		Courses    *lms.CourseService
		Groups     *lms.GroupService
		Sessions   *session.Store
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	api.POST("/login", s.login)

	// authed endpoints: session cookie resolved, admin role required
	ag := api.Group("", sessionMiddleware(s.opts.Sessions), adminMiddleware())
	ag.POST("/logout", s.logout)
	ag.GET("/me", s.me)

	registerCourseAPI(ag, s.opts.Courses, s.opts.Validate, s.opts.Translator)
	registerGroupAPI(ag, s.opts.Groups, s.opts.Validate, s.opts.Translator)
}

func (s *server) Start() {
	go func() {
		<-s.shutdown
		s.opts.Logger.Warn("shutting down")
		_ = s.app.Shutdown(context.Background())
	}()
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) signalShutdown() {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Shule Admin!")
}
