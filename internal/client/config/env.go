package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/coachlogin/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix starts the name of every environment variable read here.
const EnvPrefix = "COACHLOGIN_"

// parseEnv overlays Config with COACHLOGIN_* environment variables.
//
// A dotenv file given with -e or -env is loaded first. Variables already set
// in the process environment win over the file, as godotenv.Load does.
//
// Panics on an unreadable dotenv file or on unparsable values.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	}

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("API_BASE_URL", &cfg.APIBaseURL)
	str("CLIENT_ORIGIN", &cfg.ClientOrigin)
	str("DASHBOARD_ROUTE", &cfg.DashboardRoute)
	str("DATA_DIR", &cfg.DataDir)
	str("DURABLE_STORE", &cfg.DurableStorePath)
	str("COOKIE_STORE", &cfg.CookieStorePath)
	str("CAMERA_DEVICE", &cfg.CameraDevice)
	str("FACE_IMAGE", &cfg.FaceImagePath)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v := os.Getenv(EnvPrefix + "CAMERA_COMMAND"); v != "" {
		cfg.CameraCommand = strings.Fields(v)
	}
	if v := os.Getenv(EnvPrefix + "REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv(EnvPrefix + "OPEN_BROWSER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.OpenBrowser = b
	}
}
