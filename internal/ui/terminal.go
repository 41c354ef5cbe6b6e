package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/lachlan2k/shiptrack/internal/models"
	"github.com/lachlan2k/shiptrack/internal/session"
)

// Terminal keeps the current screen state and draws it with lipgloss on Render.
// Presenter calls only update state; nothing is written until Render.
type Terminal struct {
	w io.Writer

	mu              sync.Mutex
	who             string
	authenticated   bool
	summary         []Field
	events          []models.Event
	messages        map[Channel]string
	controlsEnabled bool
	prefs           models.Preferences

	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	message lipgloss.Style
	box     lipgloss.Style
}

func NewTerminal(w io.Writer) *Terminal {
	r := lipgloss.NewRenderer(w)

	return &Terminal{
		w:        w,
		messages: make(map[Channel]string),
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:    r.NewStyle().Bold(true),
		muted:    r.NewStyle().Foreground(lipgloss.Color("8")),
		message:  r.NewStyle().Foreground(lipgloss.Color("11")),
		box:      r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func (t *Terminal) ShowAuthenticated(s *session.Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.authenticated = true
	t.who = s.String()
}

func (t *Terminal) ShowAnonymous() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.authenticated = false
	t.who = ""
}

func (t *Terminal) ShowSummary(fields []Field) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary = append([]Field(nil), fields...)
}

func (t *Terminal) ShowEvents(events []models.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append([]models.Event(nil), events...)
}

func (t *Terminal) ClearResults() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary = nil
	t.events = nil
}

func (t *Terminal) SetMessage(ch Channel, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages[ch] = text
}

func (t *Terminal) SetNotificationControls(enabled bool, prefs models.Preferences) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.controlsEnabled = enabled
	t.prefs = prefs
}

// ControlsEnabled is what the interactive shell checks before offering the preference form.
func (t *Terminal) ControlsEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.controlsEnabled
}

func (t *Terminal) Preferences() models.Preferences {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prefs
}

// View renders the whole screen to a string.
func (t *Terminal) View() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder

	if !t.authenticated {
		sb.WriteString(t.title.Render("Shipment tracking"))
		sb.WriteString("\n")
		sb.WriteString(t.muted.Render("Not logged in."))
		sb.WriteString("\n")
		t.writeMessage(&sb, ChannelAuth)
		return sb.String()
	}

	sb.WriteString(t.title.Render("Shipment tracking"))
	sb.WriteString("  ")
	sb.WriteString(t.muted.Render(t.who))
	sb.WriteString("\n\n")

	sb.WriteString(t.box.Render(t.resultsView()))
	sb.WriteString("\n")
	t.writeMessage(&sb, ChannelSearch)

	sb.WriteString("\n")
	sb.WriteString(t.label.Render("Notifications"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Email: %s  Push: %s", onOff(t.prefs.Email), onOff(t.prefs.Push)))
	if !t.controlsEnabled {
		sb.WriteString(t.muted.Render("  (read only)"))
	}
	sb.WriteString("\n")
	t.writeMessage(&sb, ChannelNotifications)

	return sb.String()
}

// Render writes View to the terminal's writer.
func (t *Terminal) Render() error {
	_, err := io.WriteString(t.w, t.View())
	return err
}

func (t *Terminal) resultsView() string {
	if len(t.summary) == 0 {
		return t.muted.Render(NoResultsText)
	}

	lines := make([]string, 0, len(t.summary)+len(t.events)+2)
	for _, f := range t.summary {
		lines = append(lines, fmt.Sprintf("%s %s", t.label.Render(f.Label+":"), f.Value))
	}

	if len(t.events) > 0 {
		lines = append(lines, "", t.label.Render("Events"))
		for _, e := range t.events {
			lines = append(lines, fmt.Sprintf("• %s  %s · %s", e.Name, t.muted.Render(e.Timestamp), e.Location))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (t *Terminal) writeMessage(sb *strings.Builder, ch Channel) {
	if msg := t.messages[ch]; msg != "" {
		sb.WriteString(t.message.Render(msg))
		sb.WriteString("\n")
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
