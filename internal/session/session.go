package session

import (
	"errors"
	"fmt"
	"sort"

	"github.com/labstack/echo/v4"
)

// SessionData is the wire shape of a logged-in user, as returned by /login and /me
// and as carried inside the stub server's session cookie.
type SessionData struct {
	Email       string   `json:"email"`
	Role        string   `json:"role,omitempty"`
	RoleLabel   string   `json:"roleLabel"`
	Permissions []string `json:"permissions"`
}

// Session builds the immutable client-side view of the data.
func (d SessionData) Session() *Session {
	return New(d.Email, d.Role, d.RoleLabel, d.Permissions)
}

type SessionHandler interface {
	Start(echo.Context, SessionData) error
	Destroy(echo.Context) error
	GetSessionData(echo.Context) (*SessionData, error)
}

var ErrInvalidSession = errors.New("session token was invalid")

// Principal is whoever is driving the client: either an authenticated *Session
// or Anonymous. Nothing else implements it.
type Principal interface {
	isPrincipal()
}

// Anonymous is the principal before login, after logout, or when bootstrap finds no session.
type Anonymous struct{}

func (Anonymous) isPrincipal() {}

// Session is an authenticated identity with its permission set. It is never
// modified after construction: a new login produces a new Session.
type Session struct {
	email       string
	role        string
	roleLabel   string
	permissions map[string]struct{}
}

func (*Session) isPrincipal() {}

// New copies the permission list into a set; duplicates collapse.
func New(email, role, roleLabel string, permissions []string) *Session {
	set := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		set[p] = struct{}{}
	}

	return &Session{
		email:       email,
		role:        role,
		roleLabel:   roleLabel,
		permissions: set,
	}
}

func (s *Session) Email() string     { return s.email }
func (s *Session) Role() string      { return s.role }
func (s *Session) RoleLabel() string { return s.roleLabel }

// Has reports set membership. Callers gating actions should go through
// accesscontrol.HasPermission instead, which also handles Anonymous.
func (s *Session) Has(permission string) bool {
	_, ok := s.permissions[permission]
	return ok
}

// Permissions returns a sorted copy of the permission set.
func (s *Session) Permissions() []string {
	out := make([]string, 0, len(s.permissions))
	for p := range s.permissions {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Data converts back to the wire shape.
func (s *Session) Data() SessionData {
	return SessionData{
		Email:       s.email,
		Role:        s.role,
		RoleLabel:   s.roleLabel,
		Permissions: s.Permissions(),
	}
}

// String is the "email (Role Label)" line shown once logged in.
func (s *Session) String() string {
	return fmt.Sprintf("%s (%s)", s.email, s.roleLabel)
}
