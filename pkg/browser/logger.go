package browser

import "go.uber.org/zap"

// Lifecycle operations reported in addition to the delegated calls.
const (
	OpStart       = "start"
	OpClose       = "close"
	OpCloseFailed = "closeFailed"
)

// Event describes one facade call about to hit the remote session.
type Event struct {
	Owner     string
	SessionID string
	Op        string
}

// Logger is notified before every delegated remote call, and after the
// session starts and closes. Implementations must not block for long: the
// notification runs inline on the caller's goroutine.
type Logger interface {
	Notify(ev Event)
}

// NopLogger discards every event.
type NopLogger struct{}

func (NopLogger) Notify(Event) {}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(Event)

func (f LoggerFunc) Notify(ev Event) { f(ev) }

// MultiLogger fans an event out to several loggers in order.
type MultiLogger []Logger

func (m MultiLogger) Notify(ev Event) {
	for _, l := range m {
		if l != nil {
			l.Notify(ev)
		}
	}
}

// ZapLogger writes every event to a zap logger at debug level.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps logger; a nil logger yields a no-op zap logger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

func (z *ZapLogger) Notify(ev Event) {
	z.logger.Debug("selenium call",
		zap.String("owner", ev.Owner),
		zap.String("session_id", ev.SessionID),
		zap.String("op", ev.Op),
	)
}
