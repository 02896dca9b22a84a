// Package diag is the leveled diagnostic sink. Every line is tagged with the
// target and level, e.g. "[PS2][INFO] IOP: loaded iomanX (code 0)".
package diag

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Tag prefixes every line.
const Tag = "PS2"

// New returns a logger writing formatted lines to out at the given level.
func New(out io.Writer, level log.Level) *log.Logger {
	l := log.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&Formatter{})
	return l
}

// ParseLevel accepts trace, debug, info, warning (or warn), error and fatal.
func ParseLevel(s string) (log.Level, error) {
	if s == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("log level %q: %w", s, err)
	}
	if lvl == log.PanicLevel {
		return log.FatalLevel, nil
	}
	return lvl, nil
}

// Formatter renders "[PS2][LEVEL] message key=value ...".
type Formatter struct{}

func (f *Formatter) Format(e *log.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("[")
	b.WriteString(Tag)
	b.WriteString("][")
	b.WriteString(levelName(e.Level))
	b.WriteString("] ")
	b.WriteString(strings.TrimRight(e.Message, "\n"))
	for _, k := range sortedKeys(e.Data) {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelName(l log.Level) string {
	switch l {
	case log.TraceLevel:
		return "TRACE"
	case log.DebugLevel:
		return "DEBUG"
	case log.InfoLevel:
		return "INFO"
	case log.WarnLevel:
		return "WARNING"
	case log.ErrorLevel:
		return "ERROR"
	default:
		return "FATAL"
	}
}

func sortedKeys(d log.Fields) []string {
	if len(d) == 0 {
		return nil
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
