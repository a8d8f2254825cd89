// Package auth handles Discord OAuth2 login and the JWT session cookie.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mnk3ys-dashboard/internal/domain"
)

const (
	discordAPIBase   = "https://discord.com/api/v10"
	discordAuthorize = "https://discord.com/oauth2/authorize"
	discordTimeout   = 10 * time.Second
)

// DiscordClient performs the OAuth2 code exchange and user lookups.
type DiscordClient struct {
	clientID     string
	clientSecret string
	botToken     string
	redirectURI  string
	apiBase      string
	authorizeURL string
	client       *http.Client
}

// DiscordOptions bundles the DiscordClient configuration. APIBase and
// AuthorizeURL default to the public Discord endpoints; tests override them.
type DiscordOptions struct {
	ClientID     string
	ClientSecret string
	BotToken     string
	RedirectURI  string
	APIBase      string
	AuthorizeURL string
}

// NewDiscordClient creates a Discord API client.
func NewDiscordClient(opts DiscordOptions) *DiscordClient {
	apiBase := opts.APIBase
	if apiBase == "" {
		apiBase = discordAPIBase
	}
	authorizeURL := opts.AuthorizeURL
	if authorizeURL == "" {
		authorizeURL = discordAuthorize
	}
	return &DiscordClient{
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		botToken:     opts.BotToken,
		redirectURI:  opts.RedirectURI,
		apiBase:      strings.TrimRight(apiBase, "/"),
		authorizeURL: authorizeURL,
		client:       &http.Client{Timeout: discordTimeout},
	}
}

// Configured reports whether OAuth2 credentials are present.
func (c *DiscordClient) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// AuthorizeURL builds the consent URL the login handler redirects to.
func (c *DiscordClient) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "identify")
	q.Set("state", state)
	return c.authorizeURL + "?" + q.Encode()
}

// ExchangeCode trades the OAuth2 code for an access token.
func (c *DiscordClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, &token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token response had no access_token")
	}
	return token.AccessToken, nil
}

// FetchUser loads the logged-in user's profile with their access token.
func (c *DiscordClient) FetchUser(ctx context.Context, accessToken string) (*domain.DiscordUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var user domain.DiscordUser
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FetchUserByID loads any user's public profile with the bot token.
func (c *DiscordClient) FetchUserByID(ctx context.Context, id string) (*domain.DiscordUser, error) {
	if c.botToken == "" {
		return nil, fmt.Errorf("bot token not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/users/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)

	var user domain.DiscordUser
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *DiscordClient) do(req *http.Request, result interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
