package models

import (
	"fmt"
	"strings"
)

// SearchType selects which reference a shipment search matches on. The service
// decides which values are valid; the client passes it through unchecked.
type SearchType string

const (
	SearchContainer SearchType = "container"
	SearchBL        SearchType = "bl"
	SearchBooking   SearchType = "booking"
)

// SearchTypes lists the types the demo service accepts, in menu order.
var SearchTypes = []SearchType{SearchContainer, SearchBL, SearchBooking}

func (t SearchType) Label() string {
	switch t {
	case SearchContainer:
		return "Container number"
	case SearchBL:
		return "B/L number"
	case SearchBooking:
		return "Booking number"
	}
	return string(t)
}

// Shipment is a read-only tracking result. Never persisted by the client.
type Shipment struct {
	ContainerNumber string `json:"containerNumber" yaml:"containerNumber"`
	BLNumber        string `json:"blNumber" yaml:"blNumber"`
	BookingNumber   string `json:"bookingNumber" yaml:"bookingNumber"`
	VesselName      string `json:"vesselName" yaml:"vesselName"`
	Voyage          string `json:"voyage" yaml:"voyage"`
	CurrentPort     string `json:"currentPort" yaml:"currentPort"`
	ETA             ETA    `json:"eta" yaml:"eta"`
	Status          string `json:"status" yaml:"status"`
	// Events are in the order the service returned them, which is display order.
	Events []Event `json:"events" yaml:"events"`
}

// Matches reports whether ref identifies the shipment for the given search type,
// ignoring case and surrounding whitespace.
func (s *Shipment) Matches(t SearchType, ref string) bool {
	ref = strings.TrimSpace(ref)
	switch t {
	case SearchContainer:
		return strings.EqualFold(s.ContainerNumber, ref)
	case SearchBL:
		return strings.EqualFold(s.BLNumber, ref)
	case SearchBooking:
		return strings.EqualFold(s.BookingNumber, ref)
	}
	return false
}

// Event is one line of a shipment timeline. Timestamp is free text as supplied
// by the service, it isn't parsed.
type Event struct {
	Name      string `json:"name" yaml:"name"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Location  string `json:"location" yaml:"location"`
}

// Preferences are the notification switches. Always replaced whole.
type Preferences struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// PreferencesOff is the fail-safe value used whenever the real one can't be known.
var PreferencesOff = Preferences{}

func (p Preferences) String() string {
	return fmt.Sprintf("email=%s push=%s", onOff(p.Email), onOff(p.Push))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
