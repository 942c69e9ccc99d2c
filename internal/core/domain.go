package core

import "time"

// SessionRecord is a browser session known to the registry
type SessionRecord struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Owner     string     `gorm:"index;not null" json:"owner"`
	SessionID string     `gorm:"uniqueIndex;not null" json:"session_id"`
	Host      string     `gorm:"not null" json:"host"`
	LastPing  time.Time  `gorm:"index;not null" json:"last_ping"`
	ClosedAt  *time.Time `gorm:"index" json:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsOpen reports whether the session has not been closed through the facade
func (r *SessionRecord) IsOpen() bool {
	return r.ClosedAt == nil
}

// SeleniumConfig holds the session settings handed to the remote server
type SeleniumConfig struct {
	Host                string   `mapstructure:"host"`
	Platform            string   `mapstructure:"platform"`
	Arguments           []string `mapstructure:"arguments"`
	Debug               bool     `mapstructure:"debug"`
	DebugArguments      []string `mapstructure:"debug_arguments"`
	ConnectionTimeoutMs int      `mapstructure:"connection_timeout_ms"`
	RequestTimeoutMs    int      `mapstructure:"request_timeout_ms"`
	BinaryPath          string   `mapstructure:"binary_path"`
	Stealth             bool     `mapstructure:"stealth"`
	WireDebug           bool     `mapstructure:"wire_debug"` // dumps raw WebDriver traffic
}

// ProxyConfig mirrors the WebDriver proxy capability
type ProxyConfig struct {
	Type          string `mapstructure:"type"` // manual, pac, direct, system, autodetect
	HTTP          string `mapstructure:"http"`
	SSL           string `mapstructure:"ssl"`
	SocksUsername string `mapstructure:"socks_username"`
	SocksPassword string `mapstructure:"socks_password"`
}

// Enabled reports whether any proxy setting was supplied
func (p ProxyConfig) Enabled() bool {
	return p.Type != "" || p.HTTP != "" || p.SSL != ""
}

// TypingConfig bounds the pause after each typed character
type TypingConfig struct {
	DelayMinMs int `mapstructure:"delay_min_ms"`
	DelayMaxMs int `mapstructure:"delay_max_ms"`
}

// Config represents the application configuration
type Config struct {
	Selenium SeleniumConfig `mapstructure:"selenium"`
	Proxy    ProxyConfig    `mapstructure:"proxy"`
	Typing   TypingConfig   `mapstructure:"typing"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	Reaper struct {
		MaxIdle time.Duration `mapstructure:"max_idle"`
	} `mapstructure:"reaper"`
}
