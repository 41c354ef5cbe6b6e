// Package uitest provides a Presenter that records what it was told, for headless tests.
package uitest

import (
	"fmt"
	"sync"

	"github.com/lachlan2k/shiptrack/internal/models"
	"github.com/lachlan2k/shiptrack/internal/session"
	"github.com/lachlan2k/shiptrack/internal/ui"
)

type Recorder struct {
	mu sync.Mutex

	calls           []string
	who             *session.Session
	summary         []ui.Field
	events          []models.Event
	messages        map[ui.Channel]string
	controlsEnabled bool
	prefs           models.Preferences
}

var _ ui.Presenter = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{messages: make(map[ui.Channel]string)}
}

func (r *Recorder) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) ShowAuthenticated(s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ShowAuthenticated(%s)", s)
	r.who = s
}

func (r *Recorder) ShowAnonymous() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ShowAnonymous")
	r.who = nil
}

func (r *Recorder) ShowSummary(fields []ui.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ShowSummary(%d)", len(fields))
	r.summary = append([]ui.Field(nil), fields...)
}

func (r *Recorder) ShowEvents(events []models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ShowEvents(%d)", len(events))
	r.events = append([]models.Event(nil), events...)
}

func (r *Recorder) ClearResults() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ClearResults")
	r.summary = nil
	r.events = nil
}

func (r *Recorder) SetMessage(ch ui.Channel, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("SetMessage(%s, %q)", ch, text)
	r.messages[ch] = text
}

func (r *Recorder) SetNotificationControls(enabled bool, prefs models.Preferences) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("SetNotificationControls(%t, %s)", enabled, prefs)
	r.controlsEnabled = enabled
	r.prefs = prefs
}

func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Who is the session last shown, nil when the anonymous view is up.
func (r *Recorder) Who() *session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.who
}

func (r *Recorder) Message(ch ui.Channel) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[ch]
}

func (r *Recorder) Summary() []ui.Field {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ui.Field(nil), r.summary...)
}

// SummaryValue looks up a summary field by label.
func (r *Recorder) SummaryValue(label string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.summary {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

func (r *Recorder) Events() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

func (r *Recorder) Controls() (bool, models.Preferences) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.controlsEnabled, r.prefs
}
