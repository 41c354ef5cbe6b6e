package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// EnvBaseURL overrides client.base_url when set.
const EnvBaseURL = "SHIPTRACK_BASE_URL"

var ErrInvalidConfig = errors.New("invalid config")

// Role describes what the stub server hands out when someone logs in with that role.
type Role struct {
	Label       string   `toml:"label"`
	Permissions []string `toml:"permissions"`
}

type Config struct {
	Client struct {
		BaseURL string `toml:"base_url"`
		// Where the cookie jar is persisted between runs
		StateDir string `toml:"state_dir"`
		LogLevel string `toml:"log_level"`
	} `toml:"client"`

	Server struct {
		ListenPort int    `toml:"port"`
		Password   string `toml:"password"`
		LogLevel   string `toml:"log_level"`

		// Notification preferences are kept in this JSON file
		PrefsFile string `toml:"prefs_file"`
		// YAML shipment catalogue. Blank = built-in demo shipments
		ShipmentsFile string `toml:"shipments_file"`

		Session struct {
			Lifetime int `toml:"lifetime"`

			Cookie struct {
				Secret string `toml:"secret"`
				Name   string `toml:"name"`
				Secure bool   `toml:"secure"`
			} `toml:"cookie"`
		} `toml:"session"`

		// role name => label + permissions
		Roles map[string]Role `toml:"roles"`
	} `toml:"server"`

	generatedSecret bool
}

// TOML unmarshaller doesn't override fields that weren't set in the TOML, so we can apply defaults here
func (c *Config) setDefaults() {
	c.Client.BaseURL = "http://localhost:8000/api"
	c.Client.StateDir = defaultStateDir()
	c.Client.LogLevel = "warn"

	c.Server.ListenPort = 8000
	c.Server.Password = "demo"
	c.Server.LogLevel = "info"
	c.Server.PrefsFile = filepath.Join("data", "notification_prefs.json")

	c.Server.Session.Lifetime = 60 * 60 * 24 // 24 hours
	c.Server.Session.Cookie.Name = "session_id"
	c.Server.Session.Cookie.Secure = false
}

// DefaultRoles mirrors the demo accounts the tracking service ships with.
func DefaultRoles() map[string]Role {
	return map[string]Role{
		"shipper":           {Label: "Shipper", Permissions: []string{"track", "notifications"}},
		"freight_forwarder": {Label: "Freight Forwarder", Permissions: []string{"track", "notifications"}},
		"viewer":            {Label: "Viewer", Permissions: []string{"track"}},
		"admin":             {Label: "Admin", Permissions: []string{"track", "notifications", "admin"}},
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shiptrack"
	}
	return filepath.Join(home, ".shiptrack")
}

// Default returns a validated config with nothing loaded from disk.
func Default() *Config {
	conf := new(Config)
	conf.setDefaults()
	if err := conf.validate(); err != nil {
		// Defaults are static, this only trips if someone breaks setDefaults
		panic(err)
	}
	return conf
}

// LoadFromTomlFileAndValidate reads the config at filepath. A missing file is fine,
// defaults apply. The base URL environment override is applied last.
func LoadFromTomlFileAndValidate(filepath string) (*Config, error) {
	conf := new(Config)
	conf.setDefaults()

	if filepath != "" {
		file, err := os.ReadFile(filepath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}

		if err == nil {
			if err := toml.Unmarshal(file, conf); err != nil {
				return nil, fmt.Errorf("parse %s: %w", filepath, err)
			}
		}
	}

	if env := os.Getenv(EnvBaseURL); env != "" {
		conf.Client.BaseURL = env
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) validate() error {
	c.Client.BaseURL = strings.TrimRight(c.Client.BaseURL, "/")
	u, err := url.Parse(c.Client.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: client.base_url must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.Client.BaseURL)
	}

	if c.Client.StateDir == "" {
		return fmt.Errorf("%w: client.state_dir can't be blank", ErrInvalidConfig)
	}

	for _, lvl := range []string{c.Client.LogLevel, c.Server.LogLevel} {
		if !validLogLevel(lvl) {
			return fmt.Errorf("%w: unknown log level %q (want debug, info, warn, error or off)", ErrInvalidConfig, lvl)
		}
	}

	if c.Server.ListenPort <= 0 || c.Server.ListenPort > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.ListenPort)
	}

	if c.Server.Session.Lifetime <= 0 {
		return fmt.Errorf("%w: server.session.lifetime must be positive", ErrInvalidConfig)
	}

	if c.Server.Session.Cookie.Name == "" {
		return fmt.Errorf("%w: server.session.cookie.name can't be blank", ErrInvalidConfig)
	}

	if len(c.Server.Session.Cookie.Secret) == 0 {
		buff := make([]byte, 16)
		if _, err := rand.Read(buff); err != nil {
			return fmt.Errorf("failed to generate random cookie secret: %w", err)
		}
		c.Server.Session.Cookie.Secret = base64.RawStdEncoding.EncodeToString(buff)
		c.generatedSecret = true
	} else if len(c.Server.Session.Cookie.Secret) < 16 {
		return fmt.Errorf("%w: server.session.cookie.secret was less than 16 characters, please supply a long, random secret", ErrInvalidConfig)
	}

	if len(c.Server.Roles) == 0 {
		c.Server.Roles = DefaultRoles()
	}

	for name, role := range c.Server.Roles {
		if role.Label == "" {
			return fmt.Errorf("%w: role %q has no label", ErrInvalidConfig, name)
		}
	}

	return nil
}

// SecretWasGenerated reports whether the cookie secret was made up at load time,
// meaning sessions won't survive a server restart.
func (c *Config) SecretWasGenerated() bool {
	return c.generatedSecret
}

// CookieJarPath is where the client persists its session cookie.
func (c *Config) CookieJarPath() string {
	return filepath.Join(c.Client.StateDir, "cookies.json")
}

func validLogLevel(lvl string) bool {
	switch strings.ToLower(lvl) {
	case "debug", "info", "warn", "error", "off":
		return true
	}
	return false
}
