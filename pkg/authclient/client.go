package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrUnauthenticated = errors.New("no authenticated session")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(authServiceURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(authServiceURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// RemoteUser is the identity provider's view of the signed-in user.
type RemoteUser struct {
	Username  string  `json:"username"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
	IsAdmin   bool    `json:"isAdmin"`
}

// CurrentUser forwards the caller's credentials to the provider and returns
// the session's user. ErrUnauthenticated means there is no session.
func (c *Client) CurrentUser(ctx context.Context, cookies []*http.Cookie, authorization string) (*RemoteUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("current user failed with status: %d", resp.StatusCode)
	}

	var result *RemoteUser
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result == nil || result.Username == "" {
		return nil, ErrUnauthenticated
	}
	return result, nil
}
