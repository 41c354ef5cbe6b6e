package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/lachlan2k/shiptrack/internal/logging"
	"github.com/lachlan2k/shiptrack/internal/models"
	"github.com/lachlan2k/shiptrack/internal/session"
)

// Operation names, used in errors and logs.
const (
	OpLogin            = "login"
	OpLogout           = "logout"
	OpMe               = "me"
	OpSearch           = "search"
	OpGetNotifications = "get notifications"
	OpPutNotifications = "put notifications"
)

// Bodies bigger than this are treated as malformed
const maxBodySize = 1 << 20

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginResponse struct {
	User *session.SessionData `json:"user"`
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
	Preferences *models.Preferences `json:"preferences"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to the tracking service. The session lives in the cookie jar,
// the client itself is stateless.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client. It should carry a cookie jar,
// or the service will never see the session.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar},
		logger:     logging.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*session.Session, error) {
	var res loginResponse
	if err := c.do(ctx, OpLogin, http.MethodPost, "/login", nil, req, &res); err != nil {
		return nil, err
	}

	if res.User == nil {
		return nil, &MalformedResponseError{Op: OpLogin, Err: errors.New("no user in response")}
	}

	return res.User.Session(), nil
}

// Logout tells the service to drop the session. The body, if any, is ignored.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, OpLogout, http.MethodPost, "/logout", nil, nil, nil)
}

// Me asks whether the cookie jar holds a live session. Not being logged in is
// reported as (nil, nil), not an error.
func (c *Client) Me(ctx context.Context) (*session.Session, error) {
	var res meResponse
	if err := c.do(ctx, OpMe, http.MethodGet, "/me", nil, nil, &res); err != nil {
		return nil, err
	}

	if !res.Authenticated || res.User == nil {
		return nil, nil
	}

	return res.User.Session(), nil
}

// SearchShipments returns (nil, nil) when the service says there is no match.
func (c *Client) SearchShipments(ctx context.Context, searchType models.SearchType, value string) (*models.Shipment, error) {
	query := url.Values{}
	query.Set("type", string(searchType))
	query.Set("value", value)

	var res searchResponse
	if err := c.do(ctx, OpSearch, http.MethodGet, "/shipments/search", query, nil, &res); err != nil {
		return nil, err
	}

	if !res.Found {
		return nil, nil
	}

	if res.Shipment == nil {
		return nil, &MalformedResponseError{Op: OpSearch, Err: errors.New("found without a shipment")}
	}

	return res.Shipment, nil
}

func (c *Client) GetNotifications(ctx context.Context) (models.Preferences, error) {
	return c.preferences(ctx, OpGetNotifications, http.MethodGet, nil)
}

// PutNotifications returns what the service stored, which is what callers should keep.
func (c *Client) PutNotifications(ctx context.Context, prefs models.Preferences) (models.Preferences, error) {
	return c.preferences(ctx, OpPutNotifications, http.MethodPut, prefs)
}

func (c *Client) preferences(ctx context.Context, op string, method string, body any) (models.Preferences, error) {
	var res preferencesResponse
	if err := c.do(ctx, op, method, "/notifications", nil, body, &res); err != nil {
		return models.Preferences{}, err
	}

	if res.Preferences == nil {
		return models.Preferences{}, &MalformedResponseError{Op: op, Err: errors.New("no preferences in response")}
	}

	return *res.Preferences, nil
}

// do sends one request. Any non-2xx status is a ServiceError whatever the body says.
// out may be nil when the caller doesn't care about the body.
func (c *Client) do(ctx context.Context, op string, method string, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buff, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(buff)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debugf("%s %s", method, endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnf("%s failed: %v", op, err)
		return &ServiceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return &ServiceError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errRes errorResponse
		// Body is optional on failure, a garbled one just means no message
		_ = json.Unmarshal(respBody, &errRes)

		c.logger.Warnf("%s: service returned %d %q", op, resp.StatusCode, errRes.Error)
		return &ServiceError{Op: op, Status: resp.StatusCode, Message: errRes.Error}
	}

	if out == nil {
		return nil
	}

	if len(respBody) > maxBodySize {
		return &MalformedResponseError{Op: op, Err: errors.New("response body too large")}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		c.logger.Warnf("%s: couldn't decode response: %v", op, err)
		return &MalformedResponseError{Op: op, Err: err}
	}

	return nil
}
