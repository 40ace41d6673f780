package auth

import (
	"context"
	"linklyst/internal/config"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Authenticator bundles the OIDC provider, the OAuth2 exchange config, and
// the ID token verifier behind the Google sign-in flow.
type Authenticator struct {
	*oidc.Provider
	*oauth2.Config
	*oidc.IDTokenVerifier
}

// NewAuthenticator discovers the issuer's endpoints and wires up the token
// verifier and exchange config for the configured client. The profile and
// email scopes feed account linking and username derivation on first login.
func NewAuthenticator(cfg *config.OIDCConfig) (*Authenticator, error) {
	provider, err := oidc.NewProvider(context.Background(), cfg.IssuerURL)
	if err != nil {
		return nil, err
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &Authenticator{
		Provider:        provider,
		Config:          oauth2Config,
		IDTokenVerifier: verifier,
	}, nil
}
