package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"ytrelink/pkg/logger"
)

const (
	oauthScope   = "https://www.googleapis.com/auth/youtube.force-ssl"
	callbackPath = "/callback"
)

// GoogleEndpoint is Google's OAuth 2.0 endpoint for installed apps
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// OAuthConfig builds the client configuration for the YouTube scope
func OAuthConfig(clientID, clientSecret string, endpoint oauth2.Endpoint) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{oauthScope},
	}
}

type callbackResult struct {
	code string
	err  error
}

// Login runs the installed-app authorization code flow. It listens on an
// ephemeral loopback port, hands the consent URL to openURL and waits for
// the redirect or ctx to end.
func Login(ctx context.Context, cfg *oauth2.Config, openURL func(string) error) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to open loopback listener: %w", err)
	}

	c := *cfg
	c.RedirectURL = fmt.Sprintf("http://%s%s", listener.Addr().String(), callbackPath)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = errors.New("state mismatch in OAuth callback")
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("no authorization code in OAuth callback")
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You can close this window.")
		}

		select {
		case results <- res:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go server.Serve(listener)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	authURL := c.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
	if err := openURL(authURL); err != nil {
		return nil, fmt.Errorf("failed to open consent page: %w", err)
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := c.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, errors.New("no refresh token granted; revoke the app's access and log in again")
	}

	return tok, nil
}

// persistingSource hands refreshed tokens to save so the next process
// starts with a valid access token
type persistingSource struct {
	base oauth2.TokenSource
	cred *Credential
	save func(*Credential) error

	logger logger.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		p.cred.SetToken(tok)
		if p.save != nil {
			// A failed save only costs a refresh on the next run
			if err := p.save(p.cred); err != nil {
				p.logger.WithError(err).WarnWithFields("Failed to persist refreshed token", map[string]interface{}{
					"account": p.cred.Name,
				})
			}
		}
	}
	return tok, nil
}

// HTTPClient returns a client that authorizes requests with cred and
// refreshes its access token as needed. save, if set, receives cred after
// each refresh.
func HTTPClient(ctx context.Context, cred *Credential, endpoint oauth2.Endpoint, save func(*Credential) error) *http.Client {
	cfg := OAuthConfig(cred.ClientID, cred.ClientSecret, endpoint)
	initial := cred.Token()

	src := &persistingSource{
		base:   cfg.TokenSource(ctx, initial),
		cred:   cred,
		save:   save,
		last:   initial.AccessToken,
		logger: logger.GetLogger().WithField("component", "auth"),
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(initial, src))
}
