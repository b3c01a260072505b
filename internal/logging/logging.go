// Package logging builds the JSON logrus logger shared by the server, the
// migration runner and the CLI.
package logging

import (
	"io"
	"time"

	log "github.com/sirupsen/logrus"
)

// New returns a logger writing one JSON object per line to w.
// Entries carry "ts", "level" and "msg" keys; timestamps are rendered in loc.
func New(w io.Writer, level string, loc *time.Location) *log.Logger {
	if loc == nil {
		loc = time.UTC
	}

	l := log.New()
	l.SetOutput(w)
	l.SetFormatter(&locationFormatter{
		loc: loc,
		next: &log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: log.FieldMap{
				log.FieldKeyTime:  "ts",
				log.FieldKeyLevel: "level",
				log.FieldKeyMsg:   "msg",
			},
		},
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)

	return l
}

type locationFormatter struct {
	loc  *time.Location
	next log.Formatter
}

func (f *locationFormatter) Format(e *log.Entry) ([]byte, error) {
	e.Time = e.Time.In(f.loc)
	return f.next.Format(e)
}
