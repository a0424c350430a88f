package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SessionLogger writes a durable per-run log file for the demo
// binaries, in addition to whatever a Logger prints to the console.
// Debug detail goes to the file only; user-facing lines go to both.
type SessionLogger struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewSession creates a session log file under dir named by the
// current time, and returns a logger writing to it.
func NewSession(dir string) (*SessionLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("logging: create log dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("olink-%s.log", time.Now().Format("20060102-150405")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}

	s := &SessionLogger{file: file, path: path}
	s.writeLine("=== session started %s ===", time.Now().Format(time.RFC3339))
	return s, nil
}

// Path returns the log file's path.
func (s *SessionLogger) Path() string { return s.path }

// Close closes the log file.
func (s *SessionLogger) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLineLocked("=== session ended %s ===", time.Now().Format(time.RFC3339))
	return s.file.Close()
}

func (s *SessionLogger) Debugf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLineLocked("DEBUG "+format, args...)
}

func (s *SessionLogger) Infof(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	s.writeLineLocked("INFO %s", msg)
	fmt.Println(msg)
}

func (s *SessionLogger) Warnf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	s.writeLineLocked("WARN %s", msg)
	fmt.Println(msg)
}

func (s *SessionLogger) Errorf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	s.writeLineLocked("ERROR %s", msg)
	fmt.Fprintln(os.Stderr, msg)
}

func (s *SessionLogger) writeLine(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLineLocked(format, args...)
}

func (s *SessionLogger) writeLineLocked(format string, args ...interface{}) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(s.file, "[%s] %s\n", ts, fmt.Sprintf(format, args...))
}
