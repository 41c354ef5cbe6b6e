package ui

import (
	"fmt"
	"strings"

	"github.com/lachlan2k/shiptrack/internal/models"
	"github.com/lachlan2k/shiptrack/internal/session"
)

// Channel is a message area. Each one shows at most one line at a time.
type Channel int

const (
	ChannelAuth Channel = iota
	ChannelSearch
	ChannelNotifications
)

func (c Channel) String() string {
	switch c {
	case ChannelAuth:
		return "auth"
	case ChannelSearch:
		return "search"
	case ChannelNotifications:
		return "notifications"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Field is one labelled value of the shipment summary.
type Field struct {
	Label string
	Value string
}

// Presenter is everything the core is allowed to do to the screen.
type Presenter interface {
	// ShowAuthenticated switches to the logged-in view with the "email (Role)" line.
	ShowAuthenticated(s *session.Session)
	// ShowAnonymous switches back to the login view.
	ShowAnonymous()
	ShowSummary(fields []Field)
	ShowEvents(events []models.Event)
	// ClearResults drops any summary and events, showing the empty placeholder.
	ClearResults()
	// SetMessage replaces the message on a channel. Empty text clears it.
	SetMessage(ch Channel, text string)
	// SetNotificationControls sets whether the preference switches are interactive
	// and what they show.
	SetNotificationControls(enabled bool, prefs models.Preferences)
}

// NoResultsText is what an empty result area shows.
const NoResultsText = "No search result yet."

const etaLayout = "2 Jan 2006, 15:04"

// FormatETA renders an ETA as e.g. "24 Feb 2026, 09:30", always in UTC. Text
// that didn't parse is shown as the service sent it.
func FormatETA(eta models.ETA) string {
	switch {
	case eta.Parsed():
		return eta.Time.UTC().Format(etaLayout)
	case strings.TrimSpace(eta.Raw) != "":
		return eta.Raw
	}
	return "unknown"
}

// SummaryFields lays out a shipment in display order.
func SummaryFields(s *models.Shipment) []Field {
	return []Field{
		{Label: "Container", Value: s.ContainerNumber},
		{Label: "B/L", Value: s.BLNumber},
		{Label: "Booking", Value: s.BookingNumber},
		{Label: "Vessel", Value: fmt.Sprintf("%s (%s)", s.VesselName, s.Voyage)},
		{Label: "Current port", Value: s.CurrentPort},
		{Label: "ETA", Value: FormatETA(s.ETA)},
		{Label: "Status", Value: s.Status},
	}
}
