package accesscontrol

import (
	"fmt"

	"github.com/lachlan2k/shiptrack/internal/config"
	"github.com/lachlan2k/shiptrack/internal/session"
)

// SessionForRole builds the session the stub server issues for a login with the given role.
// Roles are resolved at login time, so changing the role table only affects new sessions.
func SessionForRole(conf *config.Config, email string, role string) (session.SessionData, error) {
	roleConf, ok := conf.Server.Roles[role]
	if !ok {
		return session.SessionData{}, fmt.Errorf("unknown role %q", role)
	}

	perms := make([]string, len(roleConf.Permissions))
	copy(perms, roleConf.Permissions)

	return session.SessionData{
		Email:       email,
		Role:        role,
		RoleLabel:   roleConf.Label,
		Permissions: perms,
	}, nil
}

// CheckAccess is the server-side twin of HasPermission, working from the cookie payload.
func CheckAccess(data *session.SessionData, permission string) error {
	if data == nil {
		return fmt.Errorf("no session")
	}

	if !HasPermission(data.Session(), permission) {
		return fmt.Errorf("user (%s, role %s) is missing permission %q", data.Email, data.Role, permission)
	}

	return nil
}
