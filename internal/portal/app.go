// Package portal ties the session store, the search controller and the
// notification sync together behind one presenter. It is the only place that
// creates or drops a session.
package portal

import (
	"context"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/lachlan2k/shiptrack/internal/api"
	"github.com/lachlan2k/shiptrack/internal/logging"
	"github.com/lachlan2k/shiptrack/internal/models"
	"github.com/lachlan2k/shiptrack/internal/notifications"
	"github.com/lachlan2k/shiptrack/internal/session"
	"github.com/lachlan2k/shiptrack/internal/tracking"
	"github.com/lachlan2k/shiptrack/internal/ui"
)

const MsgLoginFailed = "Login failed."

// Remote is the full tracking service contract.
type Remote interface {
	tracking.Searcher
	notifications.Remote
	Login(ctx context.Context, req api.LoginRequest) (*session.Session, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*session.Session, error)
}

type LoginResult struct {
	OK      bool
	Message string
	Session *session.Session
	Err     error
	// A later login, logout or bootstrap won; this one changed nothing.
	Stale bool
}

type App struct {
	remote Remote
	view   ui.Presenter
	logger *log.Logger

	store  *session.Store
	search *tracking.Controller
	notif  *notifications.Sync

	// Guards identity changes so a slow login can't undo a newer logout
	mu          sync.Mutex
	identitySeq uint64
}

func New(remote Remote, view ui.Presenter, logger *log.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}

	store := session.NewStore()

	a := &App{
		remote: remote,
		view:   view,
		logger: logger,
		store:  store,
		search: tracking.NewController(remote, view, logger),
		notif:  notifications.NewSync(remote, view, store.Current, logger),
	}

	store.Subscribe(a.onSessionChange)
	a.search.ClearResults()

	return a
}

// Bootstrap asks the service whether the cookie jar already holds a session.
// "Not logged in" is a normal answer; so is an unreachable service, which is
// logged and treated as anonymous.
func (a *App) Bootstrap(ctx context.Context) session.Principal {
	seq := a.begin()

	sess, err := a.remote.Me(ctx)
	if err != nil {
		a.logger.Warnf("couldn't restore session, continuing logged out: %v", err)
		sess = nil
	}

	if !a.commit(seq, sess) {
		return a.store.Current()
	}

	if sess == nil {
		return session.Anonymous{}
	}

	a.logger.Infof("restored session for %s", sess)
	a.notif.Load(ctx, sess)
	return sess
}

func (a *App) Login(ctx context.Context, email string, password string, role string) LoginResult {
	seq := a.begin()

	sess, err := a.remote.Login(ctx, api.LoginRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
		Role:     role,
	})
	if err != nil {
		res := LoginResult{Message: api.UserMessage(err, MsgLoginFailed), Err: err}
		if !a.isLatest(seq) {
			res.Stale = true
			return res
		}
		a.view.SetMessage(ui.ChannelAuth, res.Message)
		return res
	}

	if !a.commit(seq, sess) {
		return LoginResult{Session: sess, Stale: true}
	}

	a.logger.Infof("logged in as %s", sess)
	a.view.SetMessage(ui.ChannelAuth, "")
	a.notif.Load(ctx, sess)

	return LoginResult{OK: true, Session: sess}
}

// Logout ends up anonymous whatever the service says, unless a newer login
// finished first. The service's error, if any, is returned for the caller to log.
func (a *App) Logout(ctx context.Context) error {
	seq := a.begin()

	err := a.remote.Logout(ctx)
	if err != nil {
		a.logger.Warnf("logout request failed, dropping the local session anyway: %v", err)
	}

	if !a.commit(seq, nil) {
		// A newer login already won, leave its state alone
		return err
	}
	a.search.Reset()
	a.notif.Reset()
	a.view.SetMessage(ui.ChannelAuth, "")

	return err
}

func (a *App) Search(ctx context.Context, searchType models.SearchType, value string) tracking.Result {
	return a.search.Search(ctx, a.store.Current(), searchType, value)
}

// LoadNotifications refreshes the preferences. On error they read as all-off.
func (a *App) LoadNotifications(ctx context.Context) (models.Preferences, error) {
	return a.notif.Load(ctx, a.store.Current())
}

func (a *App) SaveNotifications(ctx context.Context, email bool, push bool) notifications.Result {
	return a.notif.Save(ctx, a.store.Current(), email, push)
}

func (a *App) Principal() session.Principal {
	return a.store.Current()
}

func (a *App) Session() (*session.Session, bool) {
	return a.store.Session()
}

func (a *App) Preferences() models.Preferences {
	return a.notif.Preferences()
}

func (a *App) SearchState() tracking.State {
	return a.search.State()
}

func (a *App) onSessionChange(p session.Principal) {
	a.notif.ApplyPermissions(p)

	if sess, ok := p.(*session.Session); ok {
		a.view.ShowAuthenticated(sess)
		a.search.ClearResults()
		return
	}

	a.view.ShowAnonymous()
}

func (a *App) begin() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.identitySeq++
	return a.identitySeq
}

func (a *App) isLatest(seq uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return seq == a.identitySeq
}

// commit installs sess (or clears the store for nil) if seq is still the newest
// identity change.
func (a *App) commit(seq uint64, sess *session.Session) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if seq != a.identitySeq {
		a.logger.Debugf("identity change #%d superseded by #%d", seq, a.identitySeq)
		return false
	}

	if sess == nil {
		a.store.Clear()
	} else {
		a.store.Set(sess)
	}
	return true
}
