package workflows

import (
	"strings"

	"github.com/tebeka/selenium"

	"easyselenium/internal/core"
	"easyselenium/internal/stealth"
	"easyselenium/pkg/browser"
)

// NewSession builds an unstarted browser.Session from configuration
func NewSession(cfg *core.Config, owner string, logger browser.Logger, opts ...browser.Option) (*browser.Session, error) {
	opts = append([]browser.Option{browser.WithKeyboard(stealth.KeyboardFromConfig(cfg.Typing))}, opts...)
	session, err := browser.New(owner, opts...)
	if err != nil {
		return nil, err
	}

	selenium.SetDebug(cfg.Selenium.WireDebug)

	session.SetHost(cfg.Selenium.Host).
		SetPlatform(cfg.Selenium.Platform).
		SetArguments(cfg.Selenium.Arguments...).
		SetDebug(cfg.Selenium.Debug, cfg.Selenium.DebugArguments...).
		SetConnectionTimeout(cfg.Selenium.ConnectionTimeoutMs).
		SetRequestTimeout(cfg.Selenium.RequestTimeoutMs).
		SetBinary(cfg.Selenium.BinaryPath).
		SetStealth(cfg.Selenium.Stealth).
		SetLogger(logger)

	if cfg.Proxy.Enabled() {
		session.SetProxy(ProxyFromConfig(cfg.Proxy))
	}
	return session, nil
}

// ProxyFromConfig converts the proxy section into the WebDriver capability.
// An empty type with addresses set means a manual proxy.
func ProxyFromConfig(p core.ProxyConfig) selenium.Proxy {
	typ := strings.ToLower(p.Type)
	if typ == "" {
		typ = string(selenium.Manual)
	}
	return selenium.Proxy{
		Type:          selenium.ProxyType(typ),
		HTTP:          p.HTTP,
		SSL:           p.SSL,
		SOCKSUsername: p.SocksUsername,
		SOCKSPassword: p.SocksPassword,
	}
}
