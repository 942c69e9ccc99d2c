package browser

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/log"

	"easyselenium/internal/stealth"
)

// Get navigates to url
func (s *Session) Get(url string) error {
	wd, err := s.call("get")
	if err != nil {
		return err
	}
	if err := wd.Get(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if s.stealth {
		if _, err := wd.ExecuteScript(stealth.EvasionScript(), nil); err != nil {
			return fmt.Errorf("failed to inject evasion script: %w", err)
		}
	}
	return nil
}

// QuerySelector returns the first element matching a CSS selector
func (s *Session) QuerySelector(selector string) (selenium.WebElement, error) {
	wd, err := s.call("querySelector")
	if err != nil {
		return nil, err
	}
	return wrapFind(selector)(wd.FindElement(selenium.ByCSSSelector, selector))
}

// QuerySelectorAll returns every element matching a CSS selector, possibly none
func (s *Session) QuerySelectorAll(selector string) ([]selenium.WebElement, error) {
	wd, err := s.call("querySelectorAll")
	if err != nil {
		return nil, err
	}
	return findAll(wd.FindElements(selenium.ByCSSSelector, selector))
}

// ParentSelector returns the DOM parent of child
func (s *Session) ParentSelector(child selenium.WebElement) (selenium.WebElement, error) {
	if _, err := s.call("parentSelector"); err != nil {
		return nil, err
	}
	return wrapFind("./..")(child.FindElement(selenium.ByXPATH, "./.."))
}

// ChildSelector returns the first descendant of parent matching selector
func (s *Session) ChildSelector(parent selenium.WebElement, selector string) (selenium.WebElement, error) {
	if _, err := s.call("childSelector"); err != nil {
		return nil, err
	}
	return wrapFind(selector)(parent.FindElement(selenium.ByCSSSelector, selector))
}

// ChildSelectorAll returns every descendant of parent matching selector
func (s *Session) ChildSelectorAll(parent selenium.WebElement, selector string) ([]selenium.WebElement, error) {
	if _, err := s.call("childSelectorAll"); err != nil {
		return nil, err
	}
	return findAll(parent.FindElements(selenium.ByCSSSelector, selector))
}

func wrapFind(selector string) func(selenium.WebElement, error) (selenium.WebElement, error) {
	return func(el selenium.WebElement, err error) (selenium.WebElement, error) {
		if err != nil {
			if isNoSuchElement(err) {
				return nil, fmt.Errorf("%w: %s: %v", ErrNoSuchElement, selector, err)
			}
			return nil, err
		}
		return el, nil
	}
}

func findAll(els []selenium.WebElement, err error) ([]selenium.WebElement, error) {
	if err != nil {
		if isNoSuchElement(err) {
			return []selenium.WebElement{}, nil
		}
		return nil, err
	}
	if els == nil {
		els = []selenium.WebElement{}
	}
	return els, nil
}

// WaitElement blocks until an element matching selector is displayed. A
// zero timeout means DefaultElementWait.
func (s *Session) WaitElement(selector string, timeout time.Duration) error {
	wd, err := s.call("waitElement")
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = DefaultElementWait
	}

	visible := func(wd selenium.WebDriver) (bool, error) {
		el, err := wd.FindElement(selenium.ByCSSSelector, selector)
		if err != nil {
			if isNoSuchElement(err) || isStaleElement(err) {
				return false, nil
			}
			return false, err
		}
		shown, err := el.IsDisplayed()
		if isStaleElement(err) {
			return false, nil
		}
		return shown, err
	}
	if err := wait(wd, visible, timeout); err != nil {
		return fmt.Errorf("waiting for %s: %w", selector, err)
	}
	return nil
}

// WaitUntil blocks until cond reports expected. A zero timeout means
// DefaultConditionWait. Errors returned by cond end the wait unchanged.
func (s *Session) WaitUntil(cond selenium.Condition, expected bool, timeout time.Duration) error {
	wd, err := s.call("waitUntil")
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = DefaultConditionWait
	}
	return wait(wd, func(wd selenium.WebDriver) (bool, error) {
		got, err := cond(wd)
		return got == expected, err
	}, timeout)
}

// wait polls through the library and tells expiry apart from a failing condition
func wait(wd selenium.WebDriver, cond selenium.Condition, timeout time.Duration) error {
	var condErr error
	err := wd.WaitWithTimeout(func(wd selenium.WebDriver) (bool, error) {
		ok, err := cond(wd)
		condErr = err
		return ok, err
	}, timeout)
	if err == nil {
		return nil
	}
	if condErr != nil {
		return condErr
	}
	return fmt.Errorf("%w after %s: %v", ErrTimeout, timeout, err)
}

// WriteToInput types text into el one character at a time, pausing a
// random interval after each keystroke
func (s *Session) WriteToInput(ctx context.Context, el selenium.WebElement, text string) error {
	if _, err := s.call("writeToInput"); err != nil {
		return err
	}

	for _, action := range s.keyboard.Plan(text) {
		if err := el.SendKeys(action.Key); err != nil {
			return fmt.Errorf("failed to input key: %w", err)
		}
		if err := s.pause(ctx, action.Delay); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteScript runs js in the page and returns its decoded result
func (s *Session) ExecuteScript(js string, args ...interface{}) (interface{}, error) {
	wd, err := s.call("executeScript")
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = []interface{}{}
	}
	return wd.ExecuteScript(js, args)
}

// GetCurrentURL returns the URL of the current page
func (s *Session) GetCurrentURL() (string, error) {
	wd, err := s.call("getCurrentUrl")
	if err != nil {
		return "", err
	}
	return wd.CurrentURL()
}

// GetHTML returns the source of the current page
func (s *Session) GetHTML() (string, error) {
	wd, err := s.call("getHTML")
	if err != nil {
		return "", err
	}
	return wd.PageSource()
}

// GetConsoleLog returns browser console entries since the previous call
func (s *Session) GetConsoleLog() ([]log.Message, error) {
	wd, err := s.call("getConsoleLog")
	if err != nil {
		return nil, err
	}
	return wd.Log(log.Browser)
}

// RefreshPage reloads the current page
func (s *Session) RefreshPage() error {
	wd, err := s.call("refreshPage")
	if err != nil {
		return err
	}
	return wd.Refresh()
}

// TakeScreenshot writes a PNG of the viewport to path
func (s *Session) TakeScreenshot(path string) error {
	wd, err := s.call("takeScreenshot")
	if err != nil {
		return err
	}
	png, err := wd.Screenshot()
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, path, png, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}

// PressKey sends one keystroke to the active element. Unlike every other
// call it does not notify the Logger.
func (s *Session) PressKey(key string) error {
	if s.wd == nil {
		return ErrNotStarted
	}
	if err := s.wd.KeyDown(key); err != nil {
		return err
	}
	return s.wd.KeyUp(key)
}

// ClearAllCookies deletes every cookie visible to the current page
func (s *Session) ClearAllCookies() error {
	wd, err := s.call("clearAllCookies")
	if err != nil {
		return err
	}
	return wd.DeleteAllCookies()
}

// IsVisibleElement reports whether the element matching selector is
// displayed. When the lookup fails it returns the lookup fallback (true
// unless changed with SetLookupFallback).
func (s *Session) IsVisibleElement(selector string) bool {
	el, err := s.QuerySelector(selector)
	if err != nil {
		return s.lookupFallback
	}
	shown, err := el.IsDisplayed()
	if err != nil {
		return s.lookupFallback
	}
	return shown
}

// IsExistsElement reports whether an element matches selector, with the
// same failure fallback as IsVisibleElement.
func (s *Session) IsExistsElement(selector string) bool {
	el, err := s.QuerySelector(selector)
	if err != nil {
		return s.lookupFallback
	}
	return el != nil
}
