package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/coachlogin/internal/flagx"
	"github.com/dmitrijs2005/coachlogin/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as a
// string like "15s" or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL       string         `json:"api_base_url"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	ClientOrigin     string         `json:"client_origin"`
	DashboardRoute   string         `json:"dashboard_route"`
	DataDir          string         `json:"data_dir"`
	DurableStorePath string         `json:"durable_store_path"`
	CookieStorePath  string         `json:"cookie_store_path"`
	CameraDevice     string         `json:"camera_device"`
	CameraCommand    []string       `json:"camera_command"`
	FaceImagePath    string         `json:"face_image_path"`
	OpenBrowser      *bool          `json:"open_browser"`
	LogLevel         string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Fields absent from the file keep their current value.
//
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.APIBaseURL, jc.APIBaseURL)
	set(&cfg.ClientOrigin, jc.ClientOrigin)
	set(&cfg.DashboardRoute, jc.DashboardRoute)
	set(&cfg.DataDir, jc.DataDir)
	set(&cfg.DurableStorePath, jc.DurableStorePath)
	set(&cfg.CookieStorePath, jc.CookieStorePath)
	set(&cfg.CameraDevice, jc.CameraDevice)
	set(&cfg.FaceImagePath, jc.FaceImagePath)
	set(&cfg.LogLevel, jc.LogLevel)

	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if len(jc.CameraCommand) > 0 {
		cfg.CameraCommand = jc.CameraCommand
	}
	if jc.OpenBrowser != nil {
		cfg.OpenBrowser = *jc.OpenBrowser
	}
}
