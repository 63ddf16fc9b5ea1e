package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/petnest/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-d", "-s", "-t", "-b", "-r", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-g string   gRPC health bind address (e.g. ":50051")
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret
//	-t int      session validity, hours
//	-b int      bcrypt cost
//	-r string   Redis URL for the session cache
//	-l string   log level
//
// args is filtered with flagx.FilterArgs first so flags owned by other
// loaders (-c) do not break parsing. Invalid values panic.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("petnest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionHours := fs.Int("t", int(config.SessionValidityDuration.Hours()), "session validity (in hours)")

	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL for session cache")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" && *sessionHours > 0 {
			config.SessionValidityDuration = time.Duration(*sessionHours) * time.Hour
		}
	})
}
