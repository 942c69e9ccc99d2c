package browser

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidArgument is returned when a Session is constructed without an owner label.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSessionStart wraps any failure of the remote server to create a session.
	ErrSessionStart = errors.New("session start failed")
	// ErrNoSuchElement is wrapped around lookups that matched nothing.
	ErrNoSuchElement = errors.New("no such element")
	// ErrTimeout is returned when an explicit wait expires.
	ErrTimeout = errors.New("wait timeout exceeded")
	// ErrNotStarted is returned by delegated calls made before Start or after Close.
	ErrNotStarted = errors.New("browser session not started")
	// ErrAlreadyStarted is returned by Start on a live session.
	ErrAlreadyStarted = errors.New("browser session already started")
)

// The selenium client reports W3C/JSON-wire error codes only as message text.
func isNoSuchElement(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such element")
}

func isStaleElement(err error) bool {
	return err != nil && strings.Contains(err.Error(), "stale element reference")
}

// IsSessionGone reports errors meaning the server no longer knows the
// session, so there is nothing left to terminate.
func IsSessionGone(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "invalid session id") || strings.Contains(msg, "no such session")
}
