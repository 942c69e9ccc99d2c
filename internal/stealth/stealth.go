package stealth

import (
	"time"

	rodstealth "github.com/go-rod/stealth"

	"easyselenium/internal/core"
)

// EvasionScript returns the go-rod/stealth bundle that masks the usual
// automation fingerprints (navigator.webdriver, plugins, languages, WebGL vendor)
func EvasionScript() string {
	return rodstealth.JS
}

// KeyboardFromConfig builds a Keyboard from the typing section of the config
func KeyboardFromConfig(cfg core.TypingConfig) *Keyboard {
	return NewKeyboard(
		time.Duration(cfg.DelayMinMs)*time.Millisecond,
		time.Duration(cfg.DelayMaxMs)*time.Millisecond,
	)
}
