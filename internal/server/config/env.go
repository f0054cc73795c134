package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from the environment. A .env file in the
// working directory is loaded first when present; already-set process
// variables win over the file. Unset variables leave the current value
// untouched.
//
// Supported variables:
//
//	PIXKEEP_HTTP_ADDR            HTTP bind address
//	PIXKEEP_DATABASE_DSN         PostgreSQL DSN
//	PIXKEEP_SECRET_KEY           JWT HMAC secret
//	PIXKEEP_SESSION_TTL          session token lifetime ("1h30m")
//	PIXKEEP_S3_ACCESS_KEY        S3 access key
//	PIXKEEP_S3_SECRET_KEY        S3 secret key
//	PIXKEEP_S3_BUCKET            S3 bucket
//	PIXKEEP_S3_REGION            S3 region
//	PIXKEEP_S3_ENDPOINT          S3 base endpoint
//	PIXKEEP_S3_PUBLIC_BASE_URL   public image URL base
//	PIXKEEP_SWEEP_INTERVAL       sweeper run interval ("10m")
//	PIXKEEP_SWEEP_GRACE          sweeper grace window ("15m")
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(name string, target *string) {
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}
	setDuration := func(name string, target *time.Duration) {
		v := os.Getenv(name)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*target = d
	}

	setString("PIXKEEP_HTTP_ADDR", &config.EndpointAddrHTTP)
	setString("PIXKEEP_DATABASE_DSN", &config.DatabaseDSN)
	setString("PIXKEEP_SECRET_KEY", &config.SecretKey)
	setDuration("PIXKEEP_SESSION_TTL", &config.SessionTokenValidityDuration)
	setString("PIXKEEP_S3_ACCESS_KEY", &config.S3AccessKey)
	setString("PIXKEEP_S3_SECRET_KEY", &config.S3SecretKey)
	setString("PIXKEEP_S3_BUCKET", &config.S3Bucket)
	setString("PIXKEEP_S3_REGION", &config.S3Region)
	setString("PIXKEEP_S3_ENDPOINT", &config.S3BaseEndpoint)
	setString("PIXKEEP_S3_PUBLIC_BASE_URL", &config.S3PublicBaseURL)
	setDuration("PIXKEEP_SWEEP_INTERVAL", &config.SweepInterval)
	setDuration("PIXKEEP_SWEEP_GRACE", &config.SweepGrace)
}
