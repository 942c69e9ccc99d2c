package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/log"
)

var errNoSuchElement = errors.New("no such element: Unable to locate element")

// fakeDriver implements the parts of selenium.WebDriver the facade uses.
// Anything else panics through the nil embedded interface.
type fakeDriver struct {
	selenium.WebDriver

	id       string
	elements map[string]*fakeElement
	url      string
	html     string
	png      []byte
	logs     []log.Message
	scripts  []string
	keys     []string
	calls    []string
	quits    int
	quitErr  error
	cookies  int
	findErr  error
	interval time.Duration
}

func newFakeDriver(id string) *fakeDriver {
	return &fakeDriver{
		id:       id,
		elements: map[string]*fakeElement{},
		interval: time.Millisecond,
	}
}

func (d *fakeDriver) record(name string) { d.calls = append(d.calls, name) }

func (d *fakeDriver) SessionID() string { return d.id }

func (d *fakeDriver) Get(url string) error {
	d.record("Get")
	d.url = url
	return nil
}

func (d *fakeDriver) FindElement(by, value string) (selenium.WebElement, error) {
	d.record("FindElement")
	if d.findErr != nil {
		return nil, d.findErr
	}
	if el, ok := d.elements[value]; ok {
		return el, nil
	}
	return nil, errNoSuchElement
}

func (d *fakeDriver) FindElements(by, value string) ([]selenium.WebElement, error) {
	d.record("FindElements")
	if el, ok := d.elements[value]; ok {
		return []selenium.WebElement{el}, nil
	}
	return nil, nil
}

func (d *fakeDriver) CurrentURL() (string, error) { d.record("CurrentURL"); return d.url, nil }
func (d *fakeDriver) PageSource() (string, error) { d.record("PageSource"); return d.html, nil }
func (d *fakeDriver) Refresh() error              { d.record("Refresh"); return nil }
func (d *fakeDriver) Screenshot() ([]byte, error) { d.record("Screenshot"); return d.png, nil }

func (d *fakeDriver) Log(typ log.Type) ([]log.Message, error) {
	d.record("Log:" + string(typ))
	return d.logs, nil
}

func (d *fakeDriver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	d.record("ExecuteScript")
	d.scripts = append(d.scripts, script)
	return len(d.scripts), nil
}

func (d *fakeDriver) KeyDown(keys string) error {
	d.record("KeyDown")
	d.keys = append(d.keys, keys)
	return nil
}

func (d *fakeDriver) KeyUp(keys string) error { d.record("KeyUp"); return nil }

func (d *fakeDriver) DeleteAllCookies() error {
	d.record("DeleteAllCookies")
	d.cookies++
	return nil
}

func (d *fakeDriver) Quit() error {
	d.record("Quit")
	d.quits++
	return d.quitErr
}

// WaitWithTimeout mirrors the library's polling loop and its error text.
func (d *fakeDriver) WaitWithTimeout(cond selenium.Condition, timeout time.Duration) error {
	start := time.Now()
	for {
		done, err := cond(d)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if elapsed := time.Since(start); elapsed > timeout {
			return fmt.Errorf("timeout after %v", elapsed)
		}
		time.Sleep(d.interval)
	}
}

type fakeElement struct {
	selenium.WebElement

	name      string
	displayed bool
	parent    *fakeElement
	children  map[string]*fakeElement
	sent      []string
	onSend    func(key string)
}

func (e *fakeElement) SendKeys(keys string) error {
	e.sent = append(e.sent, keys)
	if e.onSend != nil {
		e.onSend(keys)
	}
	return nil
}

func (e *fakeElement) IsDisplayed() (bool, error) { return e.displayed, nil }

func (e *fakeElement) FindElement(by, value string) (selenium.WebElement, error) {
	if by == selenium.ByXPATH && value == "./.." && e.parent != nil {
		return e.parent, nil
	}
	if c, ok := e.children[value]; ok {
		return c, nil
	}
	return nil, errNoSuchElement
}

func (e *fakeElement) FindElements(by, value string) ([]selenium.WebElement, error) {
	if c, ok := e.children[value]; ok {
		return []selenium.WebElement{c}, nil
	}
	return nil, errNoSuchElement
}

// recordingDialer captures what Start hands to the driver-creation entry point.
type recordingDialer struct {
	driver         *fakeDriver
	err            error
	calls          int
	host           string
	caps           selenium.Capabilities
	connectTimeout time.Duration
	requestTimeout time.Duration
}

func (r *recordingDialer) dial(host string, caps selenium.Capabilities, connectTimeout, requestTimeout time.Duration) (selenium.WebDriver, error) {
	r.calls++
	r.host = host
	r.caps = caps
	r.connectTimeout = connectTimeout
	r.requestTimeout = requestTimeout
	if r.err != nil {
		return nil, r.err
	}
	return r.driver, nil
}
