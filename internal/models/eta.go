package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// etaLayouts are tried in order. Layouts without a zone are read as UTC.
var etaLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ETA is an estimated arrival as the service sent it. Time is set when the text
// could be parsed; Raw keeps the text either way so nothing is lost.
type ETA struct {
	Time time.Time
	Raw  string
}

func NewETA(t time.Time) ETA {
	return ETA{Time: t}
}

// ParseETA never fails: text it doesn't recognise is kept in Raw with a zero Time.
func ParseETA(raw string) ETA {
	eta := ETA{Raw: raw}

	trimmed := strings.TrimSpace(raw)
	for _, layout := range etaLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			eta.Time = t
			break
		}
	}

	return eta
}

func (e ETA) IsZero() bool {
	return e.Time.IsZero() && e.Raw == ""
}

// Parsed reports whether Time holds a real instant.
func (e ETA) Parsed() bool {
	return !e.Time.IsZero()
}

func (e ETA) MarshalJSON() ([]byte, error) {
	switch {
	case e.Raw != "":
		return json.Marshal(e.Raw)
	case e.Time.IsZero():
		return []byte("null"), nil
	}
	return json.Marshal(e.Time.Format(time.RFC3339))
}

func (e *ETA) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*e = ETA{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Not a string, keep whatever it was for display
		*e = ETA{Raw: string(data)}
		return nil
	}

	*e = ParseETA(s)
	return nil
}

func (e *ETA) UnmarshalYAML(value *yaml.Node) error {
	*e = ParseETA(value.Value)
	return nil
}
