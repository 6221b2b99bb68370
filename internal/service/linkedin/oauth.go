// Package linkedin integrates with the LinkedIn REST API: the OAuth member
// login and the UGC post publishing flow.
package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/postpilot/postpilot/internal/logging"
	"github.com/postpilot/postpilot/internal/upstream"
)

const (
	authURL           = "https://www.linkedin.com/oauth/v2/authorization"
	tokenURL          = "https://www.linkedin.com/oauth/v2/accessToken"
	defaultAPIBaseURL = "https://api.linkedin.com"

	// stateTTL bounds how long a started login may dangle before the
	// callback arrives.
	stateTTL = 10 * time.Minute
)

// ErrInvalidState is returned when a callback carries an unknown, reused or
// expired state parameter.
var ErrInvalidState = errors.New("unknown or expired oauth state")

// Authenticator drives the LinkedIn authorization-code flow and resolves the
// member identity behind the obtained token.
type Authenticator struct {
	oauth      *oauth2.Config
	store      Store
	apiBaseURL string
	httpClient *http.Client
	logger     logging.Logger
}

// NewAuthenticator creates an Authenticator for the given OAuth application.
func NewAuthenticator(clientID, clientSecret, redirectURL string, store Store, logger logging.Logger) *Authenticator {
	if logger == nil {
		logger = logging.Nop()
	}

	return &Authenticator{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "w_member_social"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		store:      store,
		apiBaseURL: defaultAPIBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// LoginURL registers a fresh state and returns the provider authorization
// URL to redirect the member to.
func (a *Authenticator) LoginURL(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := a.store.SaveState(ctx, state, stateTTL); err != nil {
		return "", fmt.Errorf("saving oauth state: %w", err)
	}
	return a.oauth.AuthCodeURL(state), nil
}

// HandleCallback validates the returned state, exchanges the code for a
// bearer token and stores it together with the member URN.
func (a *Authenticator) HandleCallback(ctx context.Context, code, state string) (*StoredToken, error) {
	ok, err := a.store.ConsumeState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("consuming oauth state: %w", err)
	}
	if !ok {
		return nil, ErrInvalidState
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	sub, name := claimsFromIDToken(token)
	if sub == "" {
		sub, name, err = a.fetchUserInfo(ctx, token.AccessToken)
		if err != nil {
			return nil, err
		}
	}

	stored := StoredToken{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.Expiry,
		PersonURN:   "urn:li:person:" + sub,
		Name:        name,
	}
	if err := a.store.SaveToken(ctx, stored); err != nil {
		return nil, fmt.Errorf("saving token: %w", err)
	}

	a.logger.Info("LinkedIn login completed",
		"person_urn", stored.PersonURN,
		"expires_at", stored.ExpiresAt)
	return &stored, nil
}

// claimsFromIDToken reads sub and name from the OIDC id_token when the token
// response carries one. The id_token arrives first-party from the token
// endpoint over TLS, so the payload is read without signature verification.
func claimsFromIDToken(token *oauth2.Token) (sub, name string) {
	raw, _ := token.Extra("id_token").(string)
	if raw == "" {
		return "", ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", ""
	}
	sub, _ = claims["sub"].(string)
	name, _ = claims["name"].(string)
	return sub, name
}

// fetchUserInfo resolves the member identity through the userinfo endpoint.
// Used when the token response carried no readable id_token.
func (a *Authenticator) fetchUserInfo(ctx context.Context, accessToken string) (sub, name string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBaseURL+"/v2/userinfo", nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", upstream.FromResponse("linkedin", resp.StatusCode, body)
	}

	var info struct {
		Sub  string `json:"sub"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return "", "", fmt.Errorf("decoding userinfo: %w", err)
	}
	if info.Sub == "" {
		return "", "", errors.New("userinfo response missing sub")
	}
	return info.Sub, info.Name, nil
}
