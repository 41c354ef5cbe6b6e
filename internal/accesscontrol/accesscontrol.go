package accesscontrol

import (
	"github.com/lachlan2k/shiptrack/internal/session"
)

// Permission tags the client knows how to gate. The vocabulary is open: the
// service may hand out others (e.g. "admin"), they just don't unlock anything here.
const (
	PermTrack         = "track"
	PermNotifications = "notifications"
)

// HasPermission is the single gate consulted before any protected action.
// Anonymous (or a nil principal) is never allowed anything.
func HasPermission(p session.Principal, permission string) bool {
	switch v := p.(type) {
	case *session.Session:
		if v == nil {
			return false
		}
		return v.Has(permission)
	case session.Anonymous:
		return false
	default:
		return false
	}
}

// CanTrack and CanEditNotifications are shorthands for the two protected capabilities.
func CanTrack(p session.Principal) bool {
	return HasPermission(p, PermTrack)
}

func CanEditNotifications(p session.Principal) bool {
	return HasPermission(p, PermNotifications)
}
