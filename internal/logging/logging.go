package logging

import (
	"io"
	"strings"

	"github.com/labstack/gommon/log"
)

const header = `${time_rfc3339} ${level} ${prefix}`

// New returns a gommon logger, the same logger type echo uses for e.Logger,
// so client and server output look alike. Unknown levels fall back to warn.
func New(prefix string, level string, w io.Writer) *log.Logger {
	l := log.New(prefix)
	l.SetHeader(header)
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	return l
}

// Discard is a logger that drops everything. Handy in tests.
func Discard() *log.Logger {
	return New("discard", "off", io.Discard)
}

func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "info":
		return log.INFO
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.WARN
}
