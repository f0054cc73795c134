package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pixkeep/pixkeep/internal/flagx"
	"github.com/pixkeep/pixkeep/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "10m"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	IdleTimeout    timex.Duration `json:"idle_timeout"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c or -config flags. When neither flag is set, nothing is loaded. Read or
// unmarshal errors panic.
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

	cfg.ServerBaseURL = jc.ServerBaseURL
	cfg.IdleTimeout = time.Duration(jc.IdleTimeout.Duration)
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
}
