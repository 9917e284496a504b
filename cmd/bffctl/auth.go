package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tijs/atproto-bff-go/bffauth"
	"github.com/tijs/atproto-bff-go/bffclient"
	"github.com/tijs/atproto-bff-go/pkg/robusthttp"

	"github.com/adrg/xdg"
	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"
)

func configFromContext(cctx *cli.Context) (*bffauth.Config, error) {
	appURL := cctx.String("app-url")
	cookieDomain := cctx.String("cookie-domain")
	if cookieDomain == "" {
		u, err := url.Parse(appURL)
		if err != nil {
			return nil, err
		}
		cookieDomain = u.Hostname()
	}

	cfg := bffauth.Config{
		AppURL:            appURL,
		UserAgent:         "bffctl/" + versioninfo.Short(),
		SessionCookieName: cctx.String("cookie-name"),
		CookieDomain:      cookieDomain,
		CallbackScheme:    cctx.String("callback-scheme"),
		SessionDuration:   cctx.Duration("session-duration"),
		RefreshThreshold:  cctx.Duration("refresh-threshold"),
		MaxRetryAttempts:  cctx.Int("max-retries"),
		MaxBackoffDelay:   cctx.Duration("max-backoff"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newCoordinator(cctx *cli.Context) (*bffauth.Coordinator, error) {
	cfg, err := configFromContext(cctx)
	if err != nil {
		return nil, err
	}

	cookies, err := bffauth.NewJarCookieManager(cfg)
	if err != nil {
		return nil, err
	}

	fPath, err := xdg.StateFile("bffctl/auth-session.json")
	if err != nil {
		return nil, err
	}

	return &bffauth.Coordinator{
		Client:  robusthttp.NewClient(robusthttp.WithCookieJar(cookies.Jar)),
		Config:  cfg,
		Store:   bffauth.NewFileStore(fPath),
		Cookies: cookies,
	}, nil
}

// resumeSession re-seeds the in-process cookie jar from the persisted
// session token. Each CLI invocation starts with an empty jar, so the cookie
// has to be materialized again before any authenticated request.
func resumeSession(ctx context.Context, co *bffauth.Coordinator) (*bffauth.Credentials, error) {
	creds, err := co.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, fmt.Errorf("not logged in (no saved session)")
	}
	if _, err := co.Cookies.SetSession(creds.SessionID); err != nil {
		return nil, err
	}
	return creds, nil
}

var cmdLogin = &cli.Command{
	Name:  "login",
	Usage: "print the hosted authorization URL to open in a browser",
	Action: func(cctx *cli.Context) error {
		co, err := newCoordinator(cctx)
		if err != nil {
			return err
		}
		fmt.Printf("open in a browser:\n\n  %s\n\n", co.StartOAuthFlow())
		fmt.Printf("then complete the flow with:\n\n  bffctl callback '%s://callback?did=...&session_token=...'\n", co.Config.CallbackScheme)
		return nil
	},
}

var cmdCallback = &cli.Command{
	Name:      "callback",
	Usage:     "complete the OAuth flow from the redirect URL",
	ArgsUsage: "<callback-url>",
	Action: func(cctx *cli.Context) error {
		callbackURL := cctx.Args().First()
		if callbackURL == "" {
			return fmt.Errorf("expected callback URL as argument")
		}
		co, err := newCoordinator(cctx)
		if err != nil {
			return err
		}

		creds, err := co.CompleteOAuthFlow(cctx.Context, callbackURL)
		if err != nil {
			return err
		}
		if err := co.Store.Save(cctx.Context, creds); err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s), session valid until %s\n", creds.Handle, creds.DID, creds.ExpiresAt.Local())
		return nil
	},
}

var cmdWhoami = &cli.Command{
	Name:  "whoami",
	Usage: "show the current authenticated identity",
	Action: func(cctx *cli.Context) error {
		co, err := newCoordinator(cctx)
		if err != nil {
			return err
		}
		if _, err := resumeSession(cctx.Context, co); err != nil {
			return err
		}

		client := bffclient.NewAPIClient(co)
		creds := client.CurrentUser(cctx.Context)
		if creds == nil || !client.IsAuthenticated(cctx.Context) {
			return fmt.Errorf("not logged in")
		}
		fmt.Printf("handle:  %s\n", creds.Handle)
		fmt.Printf("did:     %s\n", creds.DID)
		fmt.Printf("expires: %s\n", creds.ExpiresAt.Local())
		return nil
	},
}

var cmdRefresh = &cli.Command{
	Name:  "refresh",
	Usage: "refresh the backend session now",
	Action: func(cctx *cli.Context) error {
		co, err := newCoordinator(cctx)
		if err != nil {
			return err
		}
		if _, err := resumeSession(cctx.Context, co); err != nil {
			return err
		}

		creds, err := co.RefreshSession(cctx.Context)
		if err != nil {
			return err
		}
		fmt.Printf("session refreshed, valid until %s\n", creds.ExpiresAt.Local())
		return nil
	},
}

var cmdLogout = &cli.Command{
	Name:  "logout",
	Usage: "clear the saved session",
	Action: func(cctx *cli.Context) error {
		co, err := newCoordinator(cctx)
		if err != nil {
			return err
		}
		if err := co.SignOut(cctx.Context); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	},
}
