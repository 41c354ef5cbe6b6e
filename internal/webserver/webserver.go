package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/lachlan2k/shiptrack/internal/config"
	"github.com/lachlan2k/shiptrack/internal/session"
)

// Webserver is a stand-in tracking service speaking the same JSON contract as
// the real one. It backs the end-to-end tests and `shiptrack serve`.
type Webserver struct {
	echo           *echo.Echo
	conf           *config.Config
	sessionHandler session.SessionHandler
	catalogue      *Catalogue
	prefs          *PrefsStore
}

func New(conf *config.Config, logger *log.Logger) (*Webserver, error) {
	catalogue, err := LoadCatalogue(conf.Server.ShipmentsFile)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = logger

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Output: logger.Output(),
	}))
	e.Use(middleware.Recover())

	w := &Webserver{
		echo: e,
		conf: conf,
		sessionHandler: &session.JWTSessionHandler{
			Secret:       []byte(conf.Server.Session.Cookie.Secret),
			CookieName:   conf.Server.Session.Cookie.Name,
			CookieSecure: conf.Server.Session.Cookie.Secure,
			Lifetime:     time.Duration(conf.Server.Session.Lifetime) * time.Second,
		},
		catalogue: catalogue,
		prefs:     NewPrefsStore(conf.Server.PrefsFile),
	}

	w.registerRoutes()

	return w, nil
}

func (w *Webserver) registerRoutes() {
	w.echo.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	api := w.echo.Group("/api")

	api.POST("/login", w.loginRouteHandler)
	api.POST("/logout", w.logoutRouteHandler)
	api.GET("/me", w.meRouteHandler)

	api.GET("/shipments/search", w.searchRouteHandler, w.requireSession)
	api.GET("/notifications", w.getNotificationsRouteHandler, w.requireSession)
	api.PUT("/notifications", w.putNotificationsRouteHandler, w.requireSession)
}

func (w *Webserver) Logger() echo.Logger {
	return w.echo.Logger
}

// ServeHTTP lets tests mount the server on an httptest.Server.
func (w *Webserver) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	w.echo.ServeHTTP(rw, r)
}

// Run blocks until the server stops. A clean Shutdown is not an error.
func (w *Webserver) Run() error {
	err := w.echo.Start(fmt.Sprintf(":%d", w.conf.Server.ListenPort))
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (w *Webserver) Shutdown(ctx context.Context) error {
	return w.echo.Shutdown(ctx)
}
