package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophershop/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-p string   document store project id
//	-k string   identity provider API key
//	-d string   documents base URL
//	-u string   identity provider base URL
//	-s string   local state file
//	-t int      request timeout (in seconds)
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs first, so -c/-config and unknown
// flags do not fail the parse.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-p", "-k", "-d", "-u", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ProjectID, "p", cfg.ProjectID, "document store project id")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "identity provider API key")
	fs.StringVar(&cfg.DocumentsBaseURL, "d", cfg.DocumentsBaseURL, "documents base URL")
	fs.StringVar(&cfg.AuthBaseURL, "u", cfg.AuthBaseURL, "identity provider base URL")
	fs.StringVar(&cfg.StatePath, "s", cfg.StatePath, "local state file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
