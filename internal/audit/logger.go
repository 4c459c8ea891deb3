// internal/audit/logger.go
package audit

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger records system activity. It is constructed once per process and
// injected into every component that needs it; there is no package-level log
// state.
type Logger interface {
	Action(message string)
	Failure(message string)
	Warning(message string)
}

type logger struct {
	log *logrus.Logger
}

// New creates a JSON activity log appended to the given file path. An empty
// path logs to stdout.
func New(path string) (Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	log.SetLevel(logrus.InfoLevel)

	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open activity log: %w", err)
		}
		out = f
	}
	log.SetOutput(out)

	return &logger{log: log}, nil
}

func (l *logger) entry(category string) *logrus.Entry {
	return l.log.WithFields(logrus.Fields{
		"entry_id": uuid.NewString(),
		"category": category,
	})
}

func (l *logger) Action(message string)  { l.entry("ACTION").Info(message) }
func (l *logger) Failure(message string) { l.entry("ERROR").Error(message) }
func (l *logger) Warning(message string) { l.entry("WARNING").Warn(message) }

// Entry is one captured activity record.
type Entry struct {
	Category string
	Message  string
}

// Capture is a Logger that keeps entries in memory for assertions in tests.
type Capture struct {
	mu      sync.Mutex
	Entries []Entry
}

func NewCapture() *Capture { return &Capture{} }

func (c *Capture) record(category, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Entries = append(c.Entries, Entry{Category: category, Message: message})
}

func (c *Capture) Action(message string)  { c.record("ACTION", message) }
func (c *Capture) Failure(message string) { c.record("ERROR", message) }
func (c *Capture) Warning(message string) { c.record("WARNING", message) }

// ByCategory returns the captured messages for one category.
func (c *Capture) ByCategory(category string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, e := range c.Entries {
		if e.Category == category {
			out = append(out, e.Message)
		}
	}
	return out
}
