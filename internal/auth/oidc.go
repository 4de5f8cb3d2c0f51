package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/oauth2"
)

const envconfigPrefix = "JOBBOARD_OIDC"

// CallbackPath is where the provider redirects after sign-in.
const CallbackPath = "/auth/callback"

// OIDCConfig is read from JOBBOARD_OIDC_* environment variables.
type OIDCConfig struct {
	// ProviderURL examples:
	//   Google: https://accounts.google.com
	//   Azure Active Directory: https://login.microsoftonline.com/{tenant id}/v2.0
	ProviderURL     string `envconfig:"PROVIDER_URL" default:"https://accounts.google.com"`
	ClientID        string `envconfig:"CLIENT_ID" required:"true"`
	ClientSecret    string `envconfig:"CLIENT_SECRET" required:"true"`
	RedirectURLBase string `envconfig:"REDIRECT_URL_BASE" required:"true"`
}

// OIDCConfigFromEnvironment reads the OpenID Connect client settings.
func OIDCConfigFromEnvironment() (OIDCConfig, error) {
	c := OIDCConfig{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return c, fmt.Errorf("error reading oidc configuration from environment: %w", err)
	}
	return c, nil
}

// OIDCProvider signs users in through an OpenID Connect identity provider.
type OIDCProvider struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// NewOIDCProvider discovers the provider endpoints and builds the client.
func NewOIDCProvider(ctx context.Context, c OIDCConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, c.ProviderURL)
	if err != nil {
		return nil, fmt.Errorf("error discovering oidc provider %s: %w", c.ProviderURL, err)
	}

	return &OIDCProvider{
		oauth2Config: &oauth2.Config{
			Endpoint:     provider.Endpoint(),
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  strings.TrimSuffix(c.RedirectURLBase, "/") + CallbackPath,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: c.ClientID}),
	}, nil
}

// AuthCodeURL asks the provider to show the account chooser.
func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the code for a verified identity.
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (Identity, error) {
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("error exchanging oidc code for oauth2 token: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return Identity{}, errors.New("oauth2 token did not include an oidc identity token")
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Identity{}, fmt.Errorf("error verifying oidc identity token: %w", err)
	}

	claims := struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
	}{}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("error decoding oidc identity token claims: %w", err)
	}
	// Unverified addresses never match the allow-list.
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		claims.Email = ""
	}

	return Identity{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Expiry:  idToken.Expiry,
	}, nil
}
