package gcal

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/keyring"
	"github.com/viera97/calendar-appointments/internal/logger"
)

var (
	// ErrNotAuthorized is returned when no OAuth token has been stored yet.
	ErrNotAuthorized = errors.New("google calendar is not authorized, run 'citas calendar auth'")
	// ErrMissingClient is returned when no OAuth client id/secret is configured.
	ErrMissingClient = errors.New("google client id and secret are required")
)

// TokenStore persists the OAuth token between runs.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(*oauth2.Token) error
	Delete() error
}

// KeyringTokenStore keeps the token as JSON in the OS keyring.
type KeyringTokenStore struct{}

func (KeyringTokenStore) Load() (*oauth2.Token, error) {
	raw, err := keyring.Get(keyring.GoogleToken)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("stored google token is unreadable: %w", err)
	}
	return &tok, nil
}

func (KeyringTokenStore) Save(tok *oauth2.Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return keyring.Set(keyring.GoogleToken, string(raw))
}

func (KeyringTokenStore) Delete() error {
	err := keyring.Delete(keyring.GoogleToken)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Endpoint overrides the Google endpoint, used by tests.
	Endpoint *oauth2.Endpoint
}

// Authenticator runs the authorization-code flow and hands out token sources
// that write refreshed tokens back to the store.
type Authenticator struct {
	cfg   *oauth2.Config
	store TokenStore
}

func NewAuthenticator(cfg AuthConfig, store TokenStore) (*Authenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingClient
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = constants.DefaultGoogleRedirectURL
	}
	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	if store == nil {
		store = KeyringTokenStore{}
	}
	return &Authenticator{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{calendar.CalendarScope},
		},
		store: store,
	}, nil
}

// AuthCodeURL returns the consent page URL for state.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it.
func (a *Authenticator) Exchange(ctx context.Context, code string) error {
	tok, err := a.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if err := a.store.Save(tok); err != nil {
		return fmt.Errorf("failed to store google token: %w", err)
	}
	logger.Info("google calendar authorized")
	return nil
}

// Authorize runs the loopback flow: it listens on the redirect URL, calls
// open with the consent URL and waits for Google to redirect back.
func (a *Authenticator) Authorize(ctx context.Context, open func(authURL string) error) error {
	redirect, err := url.Parse(a.cfg.RedirectURL)
	if err != nil {
		return fmt.Errorf("invalid redirect URL: %w", err)
	}
	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	path := redirect.Path
	if path == "" {
		path = "/"
	}
	mux.Handle(path, callbackHandler(state, results))
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("oauth callback server stopped", "error", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	if err := open(a.AuthCodeURL(state)); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-results:
		if res.err != nil {
			return res.err
		}
		return a.Exchange(ctx, res.code)
	}
}

type callbackResult struct {
	code string
	err  error
}

// callbackHandler accepts the first redirect carrying the expected state.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	var once sync.Once
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		res := callbackResult{code: q.Get("code")}
		if e := q.Get("error"); e != "" {
			res = callbackResult{err: fmt.Errorf("authorization denied: %s", e)}
		} else if res.code == "" {
			res = callbackResult{err: errors.New("authorization response has no code")}
		}
		once.Do(func() { results <- res })

		if res.err != nil {
			http.Error(w, html.EscapeString(res.err.Error()), http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "citas: Google Calendar connected. You can close this window.")
	})
}

// TokenSource returns a source backed by the stored token.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	return &persistingSource{
		base:  a.cfg.TokenSource(ctx, tok),
		store: a.store,
		last:  tok.AccessToken,
	}, nil
}

// Authorized reports whether a token is stored.
func (a *Authenticator) Authorized() bool {
	_, err := a.store.Load()
	return err == nil
}

// Logout forgets the stored token.
func (a *Authenticator) Logout() error {
	return a.store.Delete()
}

// persistingSource saves every token that differs from the last one seen.
type persistingSource struct {
	mu    sync.Mutex
	base  oauth2.TokenSource
	store TokenStore
	last  string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(tok); err != nil {
			logger.Warn("failed to persist refreshed google token", "error", err)
		} else {
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}
