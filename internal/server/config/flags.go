package config

import (
	"flag"
	"os"
	"time"

	"github.com/pixkeep/pixkeep/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   public base URL for image links
//	-i int      sweeper interval, minutes
//	-w int      sweeper grace window, minutes
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-l", "-i", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTL := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")

	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "l", config.S3PublicBaseURL, "public base URL for image links")

	sweepInterval := fs.Int("i", int(config.SweepInterval.Minutes()), "sweeper interval (in minutes)")
	sweepGrace := fs.Int("w", int(config.SweepGrace.Minutes()), "sweeper grace window (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionTTL) * time.Minute
	config.SweepInterval = time.Duration(*sweepInterval) * time.Minute
	config.SweepGrace = time.Duration(*sweepGrace) * time.Minute
}
