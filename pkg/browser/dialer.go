package browser

import (
	"net"
	"net/http"
	"time"

	"github.com/tebeka/selenium"
)

// DefaultHost is the Selenium server used when none is configured.
const DefaultHost = "http://localhost:4444/wd/hub"

// Dialer is the driver-creation entry point: it requests a new remote
// session from host with the given capabilities. Zero timeouts keep the
// client's defaults.
type Dialer func(host string, caps selenium.Capabilities, connectTimeout, requestTimeout time.Duration) (selenium.WebDriver, error)

// DialRemote creates the session with github.com/tebeka/selenium. The
// library keeps a single package-level HTTP client, so every dial sets it
// from its own timeouts and later calls in the process use that client.
func DialRemote(host string, caps selenium.Capabilities, connectTimeout, requestTimeout time.Duration) (selenium.WebDriver, error) {
	selenium.HTTPClient = newHTTPClient(connectTimeout, requestTimeout)
	return selenium.NewRemote(caps, host)
}

// newHTTPClient returns http.DefaultClient when both timeouts are zero
func newHTTPClient(connectTimeout, requestTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 && requestTimeout <= 0 {
		return http.DefaultClient
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if connectTimeout > 0 {
		transport.DialContext = (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
	}
	return &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
	}
}

// deleteSession is swapped out in tests.
var deleteSession = selenium.DeleteSession

// CloseChromeBySession terminates a session by id on host without needing
// the Session that created it, e.g. for browsers orphaned by a crashed
// process. An empty host means DefaultHost.
func CloseChromeBySession(host, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidArgument
	}
	if host == "" {
		host = DefaultHost
	}
	return deleteSession(host, sessionID)
}
