// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"bloomi/cli/internal/deeplink"
	bloomierrors "bloomi/cli/internal/errors"
	"bloomi/cli/internal/session"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	loginTimeout = 5 * time.Minute
	callbackPath = "/callback"
)

var (
	loginProvider string
	noBrowser     bool
	manualLogin   bool
)

// loginCmd signs in through the browser. A loopback listener receives the
// backend's redirect carrying the token and profile.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in via browser",
	Long: `The login command opens the identity provider's sign-in page in your browser.
Once you finish there, the Bloomi backend redirects to a short-lived listener on
127.0.0.1 and the session is stored in the OS keychain.

If the browser cannot redirect back (for example on a remote machine), copy the
final URL and pass it to 'bloomi callback <url>'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if u := a.session.User(); u != nil {
			pterm.Printf("Already logged in as %s\n", u.DisplayName())
			return nil
		}

		provider := loginProvider
		if provider == "" {
			provider = a.cfg.Provider
		}

		if manualLogin {
			authURL := a.api.LoginURL(provider, deeplink.SchemeURL(a.cfg.RedirectScheme))
			pterm.Println("Open this link in any browser to sign in:")
			pterm.Printf("%s\n\n", authURL)
			pterm.Println("When the browser tries to open a " + a.cfg.RedirectScheme + ":// link, copy it and run:")
			pterm.Println("   bloomi callback '<link>'")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
		defer cancel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("start callback listener: %w", err)
		}
		redirectURI := fmt.Sprintf("http://%s%s", ln.Addr().String(), callbackPath)

		results := make(chan error, 1)
		srv := &http.Server{
			Handler:           callbackHandler(ctx, a.session, a.logger, results),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Warn("callback listener stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		authURL := a.api.LoginURL(provider, redirectURI)
		pterm.Println("Open this link to complete login:")
		pterm.Printf("%s\n\n", authURL)
		if !noBrowser {
			openBrowser(authURL)
		}

		stopSpinner := startInlineSpinner(os.Stderr, "Waiting for browser sign-in", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
		var loginErr error
		select {
		case loginErr = <-results:
		case <-ctx.Done():
			loginErr = bloomierrors.Wrap(bloomierrors.LoginCancelled, "login timed out", ctx.Err())
		}
		stopSpinner()

		if loginErr != nil {
			return loginErr
		}
		if u := a.session.User(); u != nil {
			pterm.Println(getRandomLoginGreeting(u.DisplayName()))
		}
		return nil
	},
}

// callbackHandler completes the login with the first request to callbackPath
// and reports the outcome on results.
func callbackHandler(ctx context.Context, sess *session.Manager, logger *zap.Logger, results chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		raw := "http://" + r.Host + r.URL.RequestURI()
		err := sess.HandleDeepLink(ctx, raw)
		if errors.Is(err, session.ErrAlreadyAuthenticated) {
			err = nil
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err != nil {
			logger.Warn("login callback failed", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprint(w, callbackPage("Sign-in failed", "Return to the terminal for details."))
		} else {
			_, _ = fmt.Fprint(w, callbackPage("Signed in to Bloomi", "You can close this tab and return to the terminal."))
		}

		select {
		case results <- err:
		default:
		}
	})
	return mux
}

func callbackPage(title, body string) string {
	return "<!doctype html><html><head><meta charset=\"utf-8\"><title>" + title +
		"</title></head><body style=\"font-family:sans-serif;text-align:center;margin-top:4em\"><h2>" +
		title + "</h2><p>" + body + "</p></body></html>"
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginProvider, "provider", "", "Identity provider: google, kakao or apple (default from config)")
	loginCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the sign-in link without opening a browser")
	loginCmd.Flags().BoolVar(&manualLogin, "manual", false, "Redirect to the custom scheme and finish with 'bloomi callback'")
}

// openBrowser attempts to open the provided URL in the user's default browser.
// It starts the browser process but does not wait for it to complete.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}

// getRandomLoginGreeting returns a random greeting phrase with the user's identifier
func getRandomLoginGreeting(identifier string) string {
	greetings := []string{
		"🎉 Welcome back, %s!",
		"✨ Great to see you, %s!",
		"🚀 You're all set, %s!",
		"👋 Hello %s! Ready to log a meal?",
		"🥗 Signed in as %s",
		"✅ Login successful! Hi %s!",
	}
	return fmt.Sprintf(greetings[rand.IntN(len(greetings))], identifier)
}
