package viessmann

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/kilianp07/pvcharge/infra/logger"
)

// authScope is requested for the IoT feature endpoints; offline_access keeps
// the refresh token usable between cron runs.
const authScope = "IoT User offline_access"

// Authenticator obtains access tokens from the Viessmann IAM, either through
// the PKCE authorization-code flow or the legacy implicit flow.
type Authenticator struct {
	cfg           IAMConfig
	http          *http.Client
	log           logger.Logger
	codeVerifier  string
	codeChallenge string
}

// NewAuthenticator prepares an Authenticator with a fresh PKCE verifier.
func NewAuthenticator(cfg IAMConfig, client *http.Client, log logger.Logger) (*Authenticator, error) {
	verifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}
	a := &Authenticator{
		cfg:           cfg,
		http:          client,
		log:           log,
		codeVerifier:  verifier,
		codeChallenge: codeChallenge(verifier),
	}
	return a, nil
}

func generateCodeVerifier() (string, error) {
	buf := make([]byte, 40)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func codeChallenge(verifier string) string {
	digest := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(digest[:])
}

// AccessToken runs the configured flow and returns a fresh access token.
func (a *Authenticator) AccessToken(ctx context.Context) (string, error) {
	if a.cfg.UsePKCEFlow {
		a.log.Debugf("requesting access token via pkce flow")
		return a.accessTokenPKCE(ctx)
	}
	a.log.Debugf("requesting access token via implicit flow")
	return a.accessTokenImplicit(ctx)
}

// authorize issues the authorize request with the account credentials and
// returns the redirect Location without following it.
func (a *Authenticator) authorize(ctx context.Context, params url.Values) (*url.URL, error) {
	u := fmt.Sprintf("%s/authorize?%s", a.cfg.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(a.cfg.Username, a.cfg.Password)

	client := &http.Client{
		Timeout:   a.http.Timeout,
		Transport: a.http.Transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authorize request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusFound {
		return nil, fmt.Errorf("authorize: unexpected status %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return nil, fmt.Errorf("authorize: redirect without location")
	}
	parsed, err := url.Parse(loc)
	if err != nil {
		return nil, fmt.Errorf("authorize: parse location: %w", err)
	}
	return parsed, nil
}

// authorizationCode obtains the PKCE authorization code from the redirect.
func (a *Authenticator) authorizationCode(ctx context.Context) (string, error) {
	params := url.Values{
		"client_id":             {a.cfg.ClientID},
		"scope":                 {authScope},
		"response_type":         {"code"},
		"code_challenge":        {a.codeChallenge},
		"code_challenge_method": {"S256"},
		"redirect_uri":          {a.cfg.RedirectURI},
	}
	loc, err := a.authorize(ctx, params)
	if err != nil {
		return "", err
	}
	code := loc.Query().Get("code")
	if code == "" {
		return "", fmt.Errorf("authorize: no code in redirect")
	}
	return code, nil
}

// accessTokenPKCE exchanges the authorization code for an access token.
func (a *Authenticator) accessTokenPKCE(ctx context.Context) (string, error) {
	code, err := a.authorizationCode(ctx)
	if err != nil {
		return "", err
	}
	conf := &oauth2.Config{
		ClientID:    a.cfg.ClientID,
		RedirectURL: a.cfg.RedirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  a.cfg.BaseURL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.http)
	tok, err := conf.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", a.codeVerifier))
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	return tok.AccessToken, nil
}

// accessTokenImplicit reads the access token from the redirect fragment.
func (a *Authenticator) accessTokenImplicit(ctx context.Context) (string, error) {
	params := url.Values{
		"client_id":     {a.cfg.ClientID},
		"redirect_uri":  {a.cfg.RedirectURI},
		"response_type": {"id_token token"},
		"nonce":         {"anything_goes"},
	}
	loc, err := a.authorize(ctx, params)
	if err != nil {
		return "", err
	}
	fragment, err := url.ParseQuery(loc.Fragment)
	if err != nil {
		return "", fmt.Errorf("authorize: parse fragment: %w", err)
	}
	token := fragment.Get("access_token")
	if token == "" {
		return "", fmt.Errorf("authorize: no access_token in redirect")
	}
	return token, nil
}
