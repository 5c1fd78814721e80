package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dwizi/quantumx/internal/chaterr"
	"github.com/dwizi/quantumx/internal/config"
)

const sessionCookie = "qx_session"

// Client talks to a running quantumx server. It keeps the session cookie
// between calls so a REPL stays in one conversation.
type Client struct {
	baseURL string
	http    *http.Client
}

type Reply struct {
	Response    string  `json:"response"`
	ImageBase64 *string `json:"image_base64"`
	Mode        string  `json:"mode"`
}

type Health struct {
	Status         string `json:"status"`
	Name           string `json:"name"`
	ActiveSessions int    `json:"active_sessions"`
	Collaborators  string `json:"collaborators"`
}

func New(cfg config.Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	// Leave room for the server's own collaborator timeout.
	timeout := time.Duration(cfg.LLMTimeoutSec+15) * time.Second
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if c == nil {
		return nil
	}
	if timeout < time.Second {
		return c
	}
	clone := *c
	if c.http == nil {
		clone.http = &http.Client{Timeout: timeout}
		return &clone
	}
	httpClone := *c.http
	httpClone.Timeout = timeout
	clone.http = &httpClone
	return &clone
}

func (c *Client) Chat(ctx context.Context, message, mode string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, chaterr.ErrEmptyMessage
	}
	if strings.TrimSpace(mode) == "" {
		mode = "text"
	}
	form := url.Values{"message": {message}, "mode": {mode}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", strings.NewReader(form.Encode()))
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var reply Reply
	if err := c.doJSON(req, &reply); err != nil {
		return Reply{}, err
	}
	return reply, nil
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, err
	}
	var health Health
	if err := c.doJSON(req, &health); err != nil {
		return Health{}, err
	}
	return health, nil
}

// SessionID returns the session cookie the server assigned, if any.
func (c *Client) SessionID() string {
	if c.http == nil || c.http.Jar == nil {
		return ""
	}
	target, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range c.http.Jar.Cookies(target) {
		if cookie.Name == sessionCookie {
			return cookie.Value
		}
	}
	return ""
}

func (c *Client) doJSON(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var apiError struct {
			Error    string `json:"error"`
			Response string `json:"response"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiError)
		if res.StatusCode == http.StatusBadRequest && apiError.Response != "" {
			return fmt.Errorf("%w: %s", chaterr.ErrEmptyMessage, apiError.Response)
		}
		if strings.TrimSpace(apiError.Error) == "" {
			apiError.Error = res.Status
		}
		return fmt.Errorf("server error: %s", apiError.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
