package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"taskflow/internal/backend/googletasks"
	"taskflow/internal/config"
)

const (
	callbackWait     = 5 * time.Minute
	exchangeTimeout  = 30 * time.Second
	refreshTimeout   = 10 * time.Second
	callbackBasePort = 8085
	callbackPorts    = 5
)

var (
	errNoOAuthClient = errors.New("oauth_client.json not found")
	errAlreadyAuthed = errors.New("already logged in")
)

func printOAuthClientHelp(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
	fmt.Fprintf(w, "The googletasks backend needs a Google OAuth client:\n\n")
	fmt.Fprintln(w, "  1. Open https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(w, "  2. Enable the Google Tasks API")
	fmt.Fprintln(w, "  3. Create a 'Desktop app' OAuth client and download its JSON")
	fmt.Fprintf(w, "  4. Save it as %s\n\n", cfg.OAuthClientPath())
	fmt.Fprintln(w, "Then run 'taskflow login' again.")
}

// oauthClient loads the installed-app client from the config directory.
func oauthClient(cfg *config.Config) (*oauth2.Config, error) {
	raw, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("read oauth client: %w", err)
	}
	oc, err := google.ConfigFromJSON(raw, googletasks.TasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oc, nil
}

// googleLogin runs the installed-app flow with PKCE against a loopback
// callback and writes the token to the config directory.
func googleLogin(ctx context.Context, cfg *config.Config, logger zerolog.Logger, errOut io.Writer) error {
	if !cfg.HasOAuthClient() {
		return errNoOAuthClient
	}
	oc, err := oauthClient(cfg)
	if err != nil {
		return err
	}
	if tok, ok := storedToken(cfg); ok && refreshes(ctx, oc, tok) {
		return errAlreadyAuthed
	}

	listener, err := listenCallback()
	if err != nil {
		return err
	}
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	oc.RedirectURL = "http://localhost:" + strconv.Itoa(port) + "/callback"
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier)))

	code, err := awaitCode(ctx, listener, state, logger)
	if err != nil {
		return err
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	tok, err := oc.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := cfg.EnsureDir(); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := writeToken(cfg.TokenPath(), tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	logger.Debug().
		Str("path", cfg.TokenPath()).
		Msg("stored oauth token")
	return nil
}

// listenCallback binds the first free port in the callback range.
func listenCallback() (net.Listener, error) {
	for i := range callbackPorts {
		l, err := net.Listen("tcp", net.JoinHostPort("localhost", strconv.Itoa(callbackBasePort+i)))
		if err == nil {
			return l, nil
		}
	}
	return nil, fmt.Errorf("no free callback port in %d-%d", callbackBasePort, callbackBasePort+callbackPorts-1)
}

// awaitCode serves the redirect target until the browser delivers a code
// carrying the expected state.
func awaitCode(ctx context.Context, l net.Listener, state string, logger zerolog.Logger) (string, error) {
	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	deliver := func(r result) {
		select {
		case done <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			deliver(result{err: errors.New("oauth state mismatch")})
		case q.Get("error") != "":
			http.Error(w, "authorization denied", http.StatusForbidden)
			deliver(result{err: fmt.Errorf("authorization denied: %s", q.Get("error"))})
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			deliver(result{err: errors.New("no code in callback")})
		default:
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html><body><h1>Signed in to taskflow</h1><p>You can close this window.</p></body></html>")
			deliver(result{code: q.Get("code")})
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deliver(result{err: err})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to stop oauth callback server")
		}
	}()

	timer := time.NewTimer(callbackWait)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.code, r.err
	case <-timer.C:
		return "", errors.New("oauth callback timed out")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// storedToken reads the saved token. Tokens without a refresh token are
// treated as absent.
func storedToken(cfg *config.Config) (*oauth2.Token, bool) {
	if !cfg.HasToken() {
		return nil, false
	}
	raw, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, false
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil || tok.RefreshToken == "" {
		return nil, false
	}
	return &tok, true
}

func refreshes(ctx context.Context, oc *oauth2.Config, tok *oauth2.Token) bool {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	_, err := oc.TokenSource(ctx, tok).Token()
	return err == nil
}

func writeToken(path string, tok *oauth2.Token) error {
	raw, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}
