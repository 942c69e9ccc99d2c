// Package browser is a thin facade over a remote WebDriver session. A
// Session is configured with chained setters, started once, and then
// forwards every call to the underlying github.com/tebeka/selenium handle,
// notifying an optional Logger first.
//
// A Session is meant for a single goroutine; it performs no locking.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/log"

	"easyselenium/internal/stealth"
)

// Default explicit-wait windows.
const (
	DefaultElementWait   = 10 * time.Second
	DefaultConditionWait = 30 * time.Second
)

// DefaultArguments are the chrome flags used outside debug mode.
var DefaultArguments = []string{
	"--headless", "--disable-gpu", "--no-sandbox",
	"--window-size=1920,1080", "--accept-ssl-certs=true",
}

// Session wraps one remote browser session
type Session struct {
	owner string

	host              string
	arguments         []string
	debug             bool
	debugArguments    []string
	platform          string
	connectionTimeout int // ms
	requestTimeout    int // ms
	proxy             *selenium.Proxy
	binary            string
	stealth           bool
	lookupFallback    bool

	logger   Logger
	dial     Dialer
	fs       afero.Fs
	keyboard *stealth.Keyboard
	pause    func(ctx context.Context, d time.Duration) error

	wd selenium.WebDriver
}

// Option customises collaborators of a Session
type Option func(*Session)

// WithDialer replaces the driver-creation entry point (DialRemote by default)
func WithDialer(d Dialer) Option {
	return func(s *Session) { s.dial = d }
}

// WithFs sets the filesystem screenshots are written to
func WithFs(fs afero.Fs) Option {
	return func(s *Session) { s.fs = fs }
}

// WithKeyboard sets the keystroke planner used by WriteToInput
func WithKeyboard(k *stealth.Keyboard) Option {
	return func(s *Session) { s.keyboard = k }
}

// WithPause replaces the pause between keystrokes
func WithPause(p func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Session) { s.pause = p }
}

// New creates an unstarted Session. owner labels whoever runs the browser
// and must not be empty.
func New(owner string, opts ...Option) (*Session, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner label cannot be empty", ErrInvalidArgument)
	}

	s := &Session{
		owner:          owner,
		host:           DefaultHost,
		arguments:      append([]string(nil), DefaultArguments...),
		platform:       "Linux",
		lookupFallback: true,
		logger:         NopLogger{},
		dial:           DialRemote,
		fs:             afero.NewOsFs(),
		keyboard:       stealth.NewKeyboard(stealth.DefaultKeyDelayMin, stealth.DefaultKeyDelayMax),
		pause:          stealth.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Owner returns the owner label
func (s *Session) Owner() string {
	return s.owner
}

// SetHost sets the Selenium server URL
func (s *Session) SetHost(host string) *Session {
	s.host = host
	return s
}

// SetArguments appends args to the headless argument list
func (s *Session) SetArguments(args ...string) *Session {
	s.arguments = append(s.arguments, args...)
	return s
}

// AddArgument appends one argument to the headless argument list
func (s *Session) AddArgument(arg string) *Session {
	s.arguments = append(s.arguments, arg)
	return s
}

// SetDebug toggles debug mode. While enabled the browser starts with args
// instead of the headless arguments, so it can render a visible UI.
func (s *Session) SetDebug(enabled bool, args ...string) *Session {
	s.debug = enabled
	s.debugArguments = append([]string(nil), args...)
	return s
}

// SetPlatform sets the platform capability
func (s *Session) SetPlatform(platform string) *Session {
	s.platform = platform
	return s
}

// SetConnectionTimeout sets the connect timeout in milliseconds
func (s *Session) SetConnectionTimeout(ms int) *Session {
	s.connectionTimeout = ms
	return s
}

// SetRequestTimeout sets the per-request timeout in milliseconds
func (s *Session) SetRequestTimeout(ms int) *Session {
	s.requestTimeout = ms
	return s
}

// SetProxy sets the proxy capability
func (s *Session) SetProxy(p selenium.Proxy) *Session {
	s.proxy = &p
	return s
}

// SetLogger attaches logger; nil detaches the current one
func (s *Session) SetLogger(logger Logger) *Session {
	if logger == nil {
		logger = NopLogger{}
	}
	s.logger = logger
	return s
}

// SetBinary sets the chrome binary path passed in the chrome options
func (s *Session) SetBinary(path string) *Session {
	s.binary = path
	return s
}

// SetStealth enables injecting the go-rod/stealth evasion script after each
// Get. The script runs once the page has loaded, so scripts executed during
// the load still see the unpatched navigator; it only hides automation from
// code that runs afterwards.
func (s *Session) SetStealth(enabled bool) *Session {
	s.stealth = enabled
	return s
}

// SetLookupFallback sets what IsVisibleElement and IsExistsElement report
// when the lookup itself fails. It defaults to true.
func (s *Session) SetLookupFallback(v bool) *Session {
	s.lookupFallback = v
	return s
}

// Capabilities builds the capability map Start sends to the server
func (s *Session) Capabilities() selenium.Capabilities {
	caps := selenium.Capabilities{
		"browserName": "chrome",
		"platform":    s.platform,
	}
	if s.proxy != nil {
		caps.AddProxy(*s.proxy)
	}

	args := s.arguments
	if s.debug {
		args = s.debugArguments
	}
	caps.AddChrome(chrome.Capabilities{
		Path: s.binary,
		Args: append([]string{}, args...),
	})
	caps.SetLogLevel(log.Browser, log.All)
	return caps
}

// Start requests a new remote session
func (s *Session) Start() (*Session, error) {
	if s.wd != nil {
		return s, ErrAlreadyStarted
	}

	wd, err := s.dial(
		s.host,
		s.Capabilities(),
		time.Duration(s.connectionTimeout)*time.Millisecond,
		time.Duration(s.requestTimeout)*time.Millisecond,
	)
	if err != nil {
		return s, fmt.Errorf("%w: %s: %w", ErrSessionStart, s.host, err)
	}

	s.wd = wd
	s.notify(OpStart)
	return s, nil
}

// SessionID returns the id of the live session, or "" if there is none
func (s *Session) SessionID() string {
	if s.wd == nil {
		return ""
	}
	return s.wd.SessionID()
}

// Host returns the configured server URL
func (s *Session) Host() string {
	return s.host
}

// Close quits the remote session. It is a no-op on an unstarted or already
// closed Session. The Logger sees OpClose when the quit succeeded and
// OpCloseFailed when it did not; either way the handle is released.
func (s *Session) Close() error {
	if s.wd == nil {
		return nil
	}

	wd := s.wd
	id := wd.SessionID()
	s.wd = nil
	if err := wd.Quit(); err != nil {
		// the remote browser may still be running
		s.logger.Notify(Event{Owner: s.owner, SessionID: id, Op: OpCloseFailed})
		return fmt.Errorf("failed to quit session %s: %w", id, err)
	}
	s.logger.Notify(Event{Owner: s.owner, SessionID: id, Op: OpClose})
	return nil
}

// GetDriver exposes the raw WebDriver only when all three confirmations are
// true; calls made on it bypass the Logger. Returns nil otherwise.
func (s *Session) GetDriver(are, you, sure bool) selenium.WebDriver {
	if are && you && sure {
		return s.wd
	}
	return nil
}

func (s *Session) notify(op string) {
	s.logger.Notify(Event{Owner: s.owner, SessionID: s.SessionID(), Op: op})
}

// call guards a delegated operation and notifies the logger
func (s *Session) call(op string) (selenium.WebDriver, error) {
	if s.wd == nil {
		return nil, ErrNotStarted
	}
	s.notify(op)
	return s.wd, nil
}
