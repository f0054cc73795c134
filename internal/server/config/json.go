package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pixkeep/pixkeep/internal/flagx"
	"github.com/pixkeep/pixkeep/internal/timex"
)

// JsonConfig is the JSON-file shape of Config. It uses timex.Duration for
// interval fields, which allows parsing both string values such as "10m"
// and integer nanoseconds. After unmarshalling, its fields are copied into
// the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	S3AccessKey                  string         `json:"s3_access_key"`
	S3SecretKey                  string         `json:"s3_secret_key"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	S3PublicBaseURL              string         `json:"s3_public_base_url"`
	SweepInterval                timex.Duration `json:"sweep_interval"`
	SweepGrace                   timex.Duration `json:"sweep_grace"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config. The file path comes from the -c or -config command-line flags;
// when neither is set, no JSON file is loaded. If the file cannot be read
// or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SessionTokenValidityDuration = time.Duration(c.SessionTokenValidityDuration.Duration)
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3PublicBaseURL = c.S3PublicBaseURL
	config.SweepInterval = time.Duration(c.SweepInterval.Duration)
	config.SweepGrace = time.Duration(c.SweepGrace.Duration)
}
