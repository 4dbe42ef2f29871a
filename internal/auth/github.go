package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/jeeyuni/clone-junglebook/internal/model"
)

// GitHub performs the OAuth code flow against GitHub and turns the provider
// profile into an Identity. The handshake itself is the provider's business;
// the core only ever sees the resulting stable key and display name.
type GitHub struct {
	oauth   *oauth2.Config
	apiBase string
}

// NewGitHub configures the provider. redirectURL is the absolute callback URL
// registered with the OAuth app.
func NewGitHub(clientID, clientSecret, redirectURL string) *GitHub {
	return &GitHub{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     github.Endpoint,
		},
		apiBase: "https://api.github.com",
	}
}

// SetAPIBase overrides the GitHub API base URL. Test hook.
func (g *GitHub) SetAPIBase(base string) { g.apiBase = base }

// SetEndpoint overrides the OAuth endpoint URLs. Test hook.
func (g *GitHub) SetEndpoint(authURL, tokenURL string) {
	g.oauth.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
}

// AuthCodeURL returns the provider authorization URL for the given state.
func (g *GitHub) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}

// FetchIdentity exchanges the callback code and loads the GitHub user. The
// identity key derives from the numeric user ID, which GitHub keeps stable
// across login and display-name changes.
func (g *GitHub) FetchIdentity(ctx context.Context, code string) (*model.Identity, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	client := g.oauth.Client(ctx, token)
	client.Timeout = 10 * time.Second
	resp, err := client.Get(g.apiBase + "/user")
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch user: http %d", resp.StatusCode)
	}

	var user githubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("provider returned no user id")
	}

	display := user.Name
	if display == "" {
		display = user.Login
	}
	return &model.Identity{
		Key:         fmt.Sprintf("github:%d", user.ID),
		DisplayName: display,
	}, nil
}
