package config

import (
	"flag"
	"os"
	"time"

	"github.com/pixkeep/pixkeep/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-i int      idle timeout in minutes (default from Config)
//	-r int      request timeout in seconds (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL to access server")
	idleTimeout := fs.Int("i", int(cfg.IdleTimeout.Minutes()), "idle timeout (in minutes)")
	requestTimeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.IdleTimeout = time.Duration(*idleTimeout) * time.Minute
	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
