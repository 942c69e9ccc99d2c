package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/log"
	"go.uber.org/zap"

	"easyselenium/pkg/browser"
)

// RunParams holds parameters for a single browsing run
type RunParams struct {
	URL            string
	WaitSelector   string
	WaitTimeout    time.Duration
	InputSelector  string
	InputText      string
	Submit         bool // press Enter after typing
	ScreenshotPath string
}

// RunResult summarises what the run observed
type RunResult struct {
	SessionID  string
	CurrentURL string
	HTMLBytes  int
	Console    []log.Message
}

// RunWorkflow opens a session, visits a page and captures it
type RunWorkflow struct {
	session *browser.Session
	logger  *zap.Logger
}

// NewRunWorkflow creates a new run workflow
func NewRunWorkflow(session *browser.Session, logger *zap.Logger) *RunWorkflow {
	return &RunWorkflow{
		session: session,
		logger:  logger,
	}
}

// Run executes the run. The session is always closed before returning.
func (w *RunWorkflow) Run(ctx context.Context, params *RunParams) (result *RunResult, err error) {
	if params.URL == "" {
		return nil, fmt.Errorf("url is required")
	}

	if _, err := w.session.Start(); err != nil {
		return nil, err
	}
	result = &RunResult{SessionID: w.session.SessionID()}
	w.logger.Info("Session started",
		zap.String("owner", w.session.Owner()),
		zap.String("session_id", result.SessionID),
		zap.String("host", w.session.Host()),
	)
	defer func() {
		if cerr := w.session.Close(); cerr != nil {
			w.logger.Error("Failed to close session", zap.Error(cerr))
			if err == nil {
				err = cerr
			}
		}
	}()

	if err := w.session.Get(params.URL); err != nil {
		return result, err
	}

	if params.WaitSelector != "" {
		if err := w.session.WaitElement(params.WaitSelector, params.WaitTimeout); err != nil {
			return result, err
		}
	}

	if params.InputSelector != "" {
		input, err := w.session.QuerySelector(params.InputSelector)
		if err != nil {
			return result, err
		}
		if err := w.session.WriteToInput(ctx, input, params.InputText); err != nil {
			return result, fmt.Errorf("failed to type into %s: %w", params.InputSelector, err)
		}
		if params.Submit {
			if err := w.session.PressKey(selenium.EnterKey); err != nil {
				return result, fmt.Errorf("failed to submit: %w", err)
			}
		}
	}

	if params.ScreenshotPath != "" {
		if err := w.session.TakeScreenshot(params.ScreenshotPath); err != nil {
			return result, err
		}
		w.logger.Info("Screenshot saved", zap.String("path", params.ScreenshotPath))
	}

	if result.CurrentURL, err = w.session.GetCurrentURL(); err != nil {
		return result, err
	}
	html, err := w.session.GetHTML()
	if err != nil {
		return result, err
	}
	result.HTMLBytes = len(html)

	// Not every driver implements the log endpoint
	if result.Console, err = w.session.GetConsoleLog(); err != nil {
		w.logger.Warn("Failed to read console log", zap.Error(err))
		err = nil
	}

	w.logger.Info("Run completed",
		zap.String("url", result.CurrentURL),
		zap.Int("html_bytes", result.HTMLBytes),
		zap.Int("console_entries", len(result.Console)),
	)
	return result, nil
}
