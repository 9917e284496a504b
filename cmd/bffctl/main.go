// bffctl is a CLI for the backend-for-frontend auth flow: it prints the
// hosted authorization URL, consumes the OAuth callback, and manages the
// resulting backend session from the command line.
package main

import (
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(-1)
	}
}

var appFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "app-url",
		Usage:    "scheme, hostname, and port of the BFF backend",
		Required: true,
		EnvVars:  []string{"BFF_APP_URL"},
	},
	&cli.StringFlag{
		Name:    "cookie-name",
		Usage:   "name of the backend session cookie",
		Value:   "sid",
		EnvVars: []string{"BFF_COOKIE_NAME"},
	},
	&cli.StringFlag{
		Name:    "cookie-domain",
		Usage:   "domain the session cookie is scoped to (defaults to the app-url host)",
		EnvVars: []string{"BFF_COOKIE_DOMAIN"},
	},
	&cli.StringFlag{
		Name:    "callback-scheme",
		Usage:   "custom URL scheme of the OAuth callback redirect",
		Value:   "bffctl",
		EnvVars: []string{"BFF_CALLBACK_SCHEME"},
	},
	&cli.DurationFlag{
		Name:    "session-duration",
		Usage:   "lifetime of a newly-established or refreshed session",
		Value:   30 * 24 * time.Hour,
		EnvVars: []string{"BFF_SESSION_DURATION"},
	},
	&cli.DurationFlag{
		Name:    "refresh-threshold",
		Usage:   "refresh proactively when the session is this close to expiry",
		Value:   time.Hour,
		EnvVars: []string{"BFF_REFRESH_THRESHOLD"},
	},
	&cli.IntFlag{
		Name:    "max-retries",
		Usage:   "ceiling on 401-triggered refresh-and-retry attempts",
		Value:   3,
		EnvVars: []string{"BFF_MAX_RETRIES"},
	},
	&cli.DurationFlag{
		Name:    "max-backoff",
		Usage:   "ceiling on the backoff delay between retry attempts",
		Value:   30 * time.Second,
		EnvVars: []string{"BFF_MAX_BACKOFF"},
	},
}

func run(args []string) error {

	app := cli.App{
		Name:    "bffctl",
		Usage:   "CLI for backend-for-frontend (BFF) atproto session auth",
		Version: versioninfo.Short(),
		Flags:   appFlags,
	}
	app.Commands = []*cli.Command{
		cmdLogin,
		cmdCallback,
		cmdWhoami,
		cmdRefresh,
		cmdLogout,
	}
	return app.Run(args)
}
