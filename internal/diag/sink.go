package diag

import (
	"bytes"
	"sync"

	log "github.com/sirupsen/logrus"
)

// LineSink is anything that takes whole log lines, such as hal.Logger.
type LineSink interface {
	WriteLineBytes(b []byte)
}

// LineWriter adapts a LineSink to io.Writer, splitting on newlines.
type LineWriter struct {
	mu   sync.Mutex
	sink LineSink
	buf  []byte
}

func NewLineWriter(sink LineSink) *LineWriter {
	return &LineWriter{sink: sink}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.sink.WriteLineBytes(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// ConsoleHook mirrors formatted entries at or above a level into a second
// sink, such as the on-screen console.
type ConsoleHook struct {
	Min  log.Level
	Sink LineSink

	fmt Formatter
}

func NewConsoleHook(sink LineSink, min log.Level) *ConsoleHook {
	return &ConsoleHook{Min: min, Sink: sink}
}

func (h *ConsoleHook) Levels() []log.Level {
	var out []log.Level
	for _, l := range log.AllLevels {
		if l <= h.Min {
			out = append(out, l)
		}
	}
	return out
}

func (h *ConsoleHook) Fire(e *log.Entry) error {
	line, err := h.fmt.Format(e)
	if err != nil {
		return err
	}
	h.Sink.WriteLineBytes(bytes.TrimRight(line, "\n"))
	return nil
}
