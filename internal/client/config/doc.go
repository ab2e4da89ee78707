// Package config loads runtime configuration for the coachlogin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. COACHLOGIN_* environment variables, optionally read from a dotenv file
//     selected via -e or -env (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Store paths left empty are placed inside the data directory by
// (*Config).Resolve.
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:8000/api/",
//	  "request_timeout": "15s",
//	  "client_origin": "http://localhost:8000",
//	  "dashboard_route": "/dashboard",
//	  "data_dir": ".coachlogin",
//	  "camera_command": ["ffmpeg", "-f", "v4l2", "-i", "/dev/video0", "-frames:v", "1", "-f", "mjpeg", "-"],
//	  "open_browser": true,
//	  "log_level": "debug"
//	}
//
// # Environment
//
//	COACHLOGIN_API_BASE_URL     COACHLOGIN_REQUEST_TIMEOUT (e.g. "10s")
//	COACHLOGIN_CLIENT_ORIGIN    COACHLOGIN_DASHBOARD_ROUTE
//	COACHLOGIN_DATA_DIR         COACHLOGIN_DURABLE_STORE
//	COACHLOGIN_COOKIE_STORE     COACHLOGIN_CAMERA_DEVICE
//	COACHLOGIN_CAMERA_COMMAND   COACHLOGIN_FACE_IMAGE
//	COACHLOGIN_OPEN_BROWSER     COACHLOGIN_LOG_LEVEL
package config
