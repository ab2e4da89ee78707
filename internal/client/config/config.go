package config

import (
	"time"

	"github.com/dmitrijs2005/coachlogin/internal/filex"
)

// Config holds runtime settings for the coachlogin CLI.
//
// Units: RequestTimeout is a time.Duration (e.g., 15*time.Second).
type Config struct {
	// APIBaseURL is the root every endpoint path is resolved against.
	APIBaseURL     string
	RequestTimeout time.Duration

	// ClientOrigin is where client-role users are sent after login, and
	// the host their cookies are scoped to.
	ClientOrigin   string
	DashboardRoute string

	DataDir          string
	DurableStorePath string
	CookieStorePath  string

	CameraDevice  string
	CameraCommand []string
	FaceImagePath string

	OpenBrowser bool
	LogLevel    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api/"
	c.RequestTimeout = 15 * time.Second
	c.ClientOrigin = "http://localhost:8000"
	c.DashboardRoute = "/dashboard"
	c.DataDir = ".coachlogin"
	c.CameraDevice = "/dev/video0"
	c.LogLevel = "info"
}

// Resolve fills the store paths left empty with files inside DataDir.
func (c *Config) Resolve() {
	if c.DurableStorePath == "" {
		c.DurableStorePath = filex.InDir(c.DataDir, "local.db")
	}
	if c.CookieStorePath == "" {
		c.CookieStorePath = filex.InDir(c.DataDir, "cookies.db")
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	cfg.Resolve()
	return cfg
}
