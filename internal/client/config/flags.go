package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/coachlogin/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   API base URL
//	-t int      request timeout in seconds
//	-o string   client origin (redirect target for client-role users)
//	-r string   in-app dashboard route
//	-d string   data directory for the local stores
//	-f string   JPEG still used instead of a camera
//	-v string   camera device
//	-b          open the browser on external redirects
//	-l string   log level: debug, info, warn, error
//
// os.Args is filtered with flagx.FilterArgs so flags owned by the JSON and
// dotenv stages do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-o", "-r", "-d", "-f", "-v", "-b", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.ClientOrigin, "o", cfg.ClientOrigin, "client origin")
	fs.StringVar(&cfg.DashboardRoute, "r", cfg.DashboardRoute, "dashboard route")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.FaceImagePath, "f", cfg.FaceImagePath, "JPEG still used instead of a camera")
	fs.StringVar(&cfg.CameraDevice, "v", cfg.CameraDevice, "camera device")
	fs.BoolVar(&cfg.OpenBrowser, "b", cfg.OpenBrowser, "open the browser on external redirects")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
