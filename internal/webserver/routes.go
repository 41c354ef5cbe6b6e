package webserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lachlan2k/shiptrack/internal/accesscontrol"
	"github.com/lachlan2k/shiptrack/internal/models"
	"github.com/lachlan2k/shiptrack/internal/session"
)

const sessionContextKey = "session"

type errorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginResponse struct {
	User session.SessionData `json:"user"`
}

type meResponse struct {
	Authenticated bool                 `json:"authenticated"`
	User          *session.SessionData `json:"user,omitempty"`
}

type searchResponse struct {
	Found    bool             `json:"found"`
	Shipment *models.Shipment `json:"shipment,omitempty"`
}

type preferencesResponse struct {
	OK          bool               `json:"ok,omitempty"`
	Preferences models.Preferences `json:"preferences"`
}

func (w *Webserver) loginRouteHandler(c echo.Context) error {
	logger := c.Echo().Logger

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid login payload"})
	}

	data, err := accesscontrol.SessionForRole(w.conf, email, req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid login payload"})
	}

	if req.Password != w.conf.Server.Password {
		logger.Printf("Denied login for %s: wrong password", email)
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid password"})
	}

	err = w.sessionHandler.Start(c, data)
	if err != nil {
		logger.Printf("Couldn't start user's session: %v", err)
		w.sessionHandler.Destroy(c) // Might as well try and clean up anyway, doesn't matter if it fails
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Couldn't log you in"})
	}

	return c.JSON(http.StatusOK, loginResponse{User: data})
}

func (w *Webserver) logoutRouteHandler(c echo.Context) error {
	w.sessionHandler.Destroy(c)
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (w *Webserver) meRouteHandler(c echo.Context) error {
	logger := c.Echo().Logger

	sessionData, err := w.sessionHandler.GetSessionData(c)
	if err != nil {
		if err != session.ErrInvalidSession {
			logger.Printf("unexpected error occured getting session data: %v", err)
		}
		return c.JSON(http.StatusOK, meResponse{Authenticated: false})
	}

	return c.JSON(http.StatusOK, meResponse{Authenticated: true, User: sessionData})
}

func (w *Webserver) searchRouteHandler(c echo.Context) error {
	sessionData := c.Get(sessionContextKey).(*session.SessionData)

	if err := accesscontrol.CheckAccess(sessionData, accesscontrol.PermTrack); err != nil {
		c.Echo().Logger.Print(err)
		return c.JSON(http.StatusForbidden, errorResponse{Error: "Forbidden"})
	}

	searchType := models.SearchType(c.QueryParam("type"))
	value := strings.TrimSpace(c.QueryParam("value"))

	if !validSearchType(searchType) || value == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid search parameters"})
	}

	shipment, ok := w.catalogue.Find(searchType, value)
	if !ok {
		return c.JSON(http.StatusOK, searchResponse{Found: false})
	}

	return c.JSON(http.StatusOK, searchResponse{Found: true, Shipment: shipment})
}

func (w *Webserver) getNotificationsRouteHandler(c echo.Context) error {
	sessionData := c.Get(sessionContextKey).(*session.SessionData)

	prefs, err := w.prefs.Get(sessionData.Email, sessionData.Role)
	if err != nil {
		c.Echo().Logger.Printf("Couldn't read preferences: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Couldn't load preferences"})
	}

	return c.JSON(http.StatusOK, preferencesResponse{Preferences: prefs})
}

func (w *Webserver) putNotificationsRouteHandler(c echo.Context) error {
	sessionData := c.Get(sessionContextKey).(*session.SessionData)

	if err := accesscontrol.CheckAccess(sessionData, accesscontrol.PermNotifications); err != nil {
		c.Echo().Logger.Print(err)
		return c.JSON(http.StatusForbidden, errorResponse{Error: "Forbidden"})
	}

	var req models.Preferences
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
	}

	stored, err := w.prefs.Put(sessionData.Email, sessionData.Role, req)
	if err != nil {
		c.Echo().Logger.Printf("Couldn't write preferences: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Couldn't save preferences"})
	}

	return c.JSON(http.StatusOK, preferencesResponse{OK: true, Preferences: stored})
}

// requireSession rejects requests without a valid session cookie and stashes
// the session data on the context for the handler.
func (w *Webserver) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionData, err := w.sessionHandler.GetSessionData(c)
		if err != nil {
			if err != session.ErrInvalidSession {
				c.Echo().Logger.Printf("unexpected error occured getting session data: %v", err)
			}
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		}

		c.Set(sessionContextKey, sessionData)
		return next(c)
	}
}

func validSearchType(t models.SearchType) bool {
	for _, known := range models.SearchTypes {
		if t == known {
			return true
		}
	}
	return false
}
