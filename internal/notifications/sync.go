package notifications

import (
	"context"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/lachlan2k/shiptrack/internal/accesscontrol"
	"github.com/lachlan2k/shiptrack/internal/api"
	"github.com/lachlan2k/shiptrack/internal/logging"
	"github.com/lachlan2k/shiptrack/internal/models"
	"github.com/lachlan2k/shiptrack/internal/session"
	"github.com/lachlan2k/shiptrack/internal/ui"
)

const (
	MsgReadOnly         = "Viewer role only has read access for tracking."
	MsgPermissionDenied = "Your role cannot modify notification preferences."
	MsgSaveFailed       = "Saving preferences failed."
	MsgSaved            = "Notification preferences saved."
)

type Remote interface {
	GetNotifications(ctx context.Context) (models.Preferences, error)
	PutNotifications(ctx context.Context, prefs models.Preferences) (models.Preferences, error)
}

type Kind string

const (
	KindSaved            Kind = "saved"
	KindPermissionDenied Kind = "permission_denied"
	KindServiceError     Kind = "service_error"
)

// Result of a Save.
type Result struct {
	Kind    Kind
	Message string
	// What the service echoed back. Only meaningful for KindSaved.
	Preferences models.Preferences
	Err         error
	// A newer load or save finished first, so this one was not applied.
	Stale bool
}

// ControlsEnabled decides whether the preference switches are interactive.
func ControlsEnabled(p session.Principal) bool {
	return accesscontrol.CanEditNotifications(p)
}

// Sync owns the local copy of the notification preferences. The copy is only
// ever replaced whole, by a successful read or write, or reset to all-off.
type Sync struct {
	remote  Remote
	view    ui.Presenter
	current func() session.Principal
	logger  *log.Logger

	mu     sync.Mutex
	latest uint64
	prefs  models.Preferences
}

// NewSync wires the sync to a presenter. current reports the principal at the
// moment of asking; control enablement is derived from it every time.
func NewSync(remote Remote, view ui.Presenter, current func() session.Principal, logger *log.Logger) *Sync {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Sync{
		remote:  remote,
		view:    view,
		current: current,
		logger:  logger,
	}
}

// Load fetches the preferences. Anyone logged in may read them. Anonymous
// callers, and any failure, fall back to all-off rather than guessing; the
// failure is still returned so callers don't mistake the fallback for the
// stored value.
func (s *Sync) Load(ctx context.Context, p session.Principal) (models.Preferences, error) {
	seq := s.begin()

	if !isAuthenticated(p) {
		s.apply(seq, models.PreferencesOff)
		return models.PreferencesOff, nil
	}

	prefs, err := s.remote.GetNotifications(ctx)
	if err != nil {
		s.logger.Warnf("loading notification preferences failed, showing them as off: %v", err)
		s.apply(seq, models.PreferencesOff)
		return models.PreferencesOff, err
	}

	s.apply(seq, prefs)
	return prefs, nil
}

// Save asks the service to store the desired switches and keeps whatever it
// answers with. On failure the previous preferences stay as they were.
func (s *Sync) Save(ctx context.Context, p session.Principal, email bool, push bool) Result {
	if !ControlsEnabled(p) {
		s.view.SetMessage(ui.ChannelNotifications, MsgPermissionDenied)
		return Result{Kind: KindPermissionDenied, Message: MsgPermissionDenied, Preferences: s.Preferences()}
	}

	seq := s.begin()

	stored, err := s.remote.PutNotifications(ctx, models.Preferences{Email: email, Push: push})
	if err != nil {
		res := Result{Kind: KindServiceError, Message: api.UserMessage(err, MsgSaveFailed), Err: err}

		s.mu.Lock()
		defer s.mu.Unlock()
		res.Preferences = s.prefs
		if seq != s.latest {
			res.Stale = true
			return res
		}
		s.view.SetMessage(ui.ChannelNotifications, res.Message)
		return res
	}

	res := Result{Kind: KindSaved, Message: MsgSaved, Preferences: stored}
	if !s.apply(seq, stored) {
		res.Stale = true
		return res
	}

	s.view.SetMessage(ui.ChannelNotifications, MsgSaved)
	return res
}

// ApplyPermissions refreshes the controls and the read-only notice for a new
// principal. Call it on every session change.
func (s *Sync) ApplyPermissions(p session.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled := ControlsEnabled(p)
	s.view.SetNotificationControls(enabled, s.prefs)

	switch {
	case !isAuthenticated(p):
		s.view.SetMessage(ui.ChannelNotifications, "")
	case !enabled:
		s.view.SetMessage(ui.ChannelNotifications, MsgReadOnly)
	default:
		s.view.SetMessage(ui.ChannelNotifications, "")
	}
}

// Reset forgets the preferences and the message, e.g. on logout. In-flight
// loads and saves will come back stale.
func (s *Sync) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest++
	s.prefs = models.PreferencesOff
	s.view.SetNotificationControls(ControlsEnabled(s.current()), s.prefs)
	s.view.SetMessage(ui.ChannelNotifications, "")
}

func (s *Sync) Preferences() models.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

func (s *Sync) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest++
	return s.latest
}

// apply installs prefs if seq is still the newest load or save.
func (s *Sync) apply(seq uint64, prefs models.Preferences) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.latest {
		s.logger.Debugf("preferences #%d superseded by #%d", seq, s.latest)
		return false
	}

	s.prefs = prefs
	s.view.SetNotificationControls(ControlsEnabled(s.current()), prefs)
	return true
}

func isAuthenticated(p session.Principal) bool {
	sess, ok := p.(*session.Session)
	return ok && sess != nil
}
