package piazza

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// DefaultUserAgent mimics a desktop browser
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36 Edg/142.0.0.0"

const sessionCookie = "session_id"

// Options configures a Client
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// Client holds a single authenticated Piazza session. Every Network bound
// to it shares the same cookie jar and headers, so RPC methods the typed
// helpers do not cover can be issued through Request.
type Client struct {
	baseURL       *url.URL
	httpClient    *http.Client
	limiter       *rate.Limiter
	userAgent     string
	authenticated bool
}

// NewClient creates a client with an empty session
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: opts.Timeout,
		},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: userAgent,
	}, nil
}

// Login fetches a CSRF token and posts the credentials, leaving the session
// cookie in the jar
func (c *Client) Login(ctx context.Context, email, password string) error {
	slog.Info("Logging in to Piazza", "email", email)

	body, status, err := c.do(ctx, http.MethodGet, "/main/csrf_token", nil, "")
	if err != nil {
		return fmt.Errorf("failed to get CSRF token: %w", err)
	}
	if status != http.StatusOK || !strings.Contains(strings.ToUpper(string(body)), "CSRF_TOKEN") {
		return &AuthenticationError{Reason: "could not get CSRF token"}
	}

	token, err := parseCSRFToken(string(body))
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("from", "/signup")
	form.Set("email", email)
	form.Set("password", password)
	form.Set("remember", "on")
	form.Set("csrf_token", token)

	body, status, err = c.do(ctx, http.MethodPost, "/class",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return fmt.Errorf("failed to post credentials: %w", err)
	}
	if status != http.StatusOK {
		return &AuthenticationError{Reason: fmt.Sprintf("unexpected status %d", status)}
	}

	// Piazza answers 200 on bad credentials and embeds the reason in the page.
	if msg, found := parseLoginError(string(body)); found {
		return &AuthenticationError{Reason: msg}
	}

	c.authenticated = true
	slog.Info("Successfully logged in")
	return nil
}

// Network returns a client bound to a class sharing this session
func (c *Client) Network(nid string) *Network {
	return &Network{client: c, nid: nid}
}

// Request issues an RPC call and returns the raw response envelope without
// interpreting its error field. nid is merged into params when non-empty.
func (c *Client) Request(ctx context.Context, method, nid string, params map[string]any) (json.RawMessage, error) {
	if !c.authenticated {
		return nil, ErrNotAuthenticated
	}

	merged := make(map[string]any, len(params)+1)
	if nid != "" {
		merged["nid"] = nid
	}
	for k, v := range params {
		merged[k] = v
	}

	payload, err := json.Marshal(map[string]any{
		"method": method,
		"params": merged,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	path := fmt.Sprintf("/logic/api?method=%s&aid=%s", url.QueryEscape(method), nonce())
	body, status, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s request failed: unexpected status %d: %s", method, status, truncate(string(body), 200))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s request failed: invalid JSON response: %s", method, truncate(string(body), 200))
	}

	return body, nil
}

// result issues an RPC call and extracts the result field, turning a
// non-null error field into a RequestError
func (c *Client) result(ctx context.Context, method, nid string, params map[string]any) (json.RawMessage, error) {
	body, err := c.Request(ctx, method, nid, params)
	if err != nil {
		return nil, err
	}

	if errField := gjson.GetBytes(body, "error"); errField.Exists() && errField.Type != gjson.Null {
		return nil, &RequestError{Method: method, Message: errField.String()}
	}

	return json.RawMessage(gjson.GetBytes(body, "result").Raw), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.csrfToken(); token != "" {
		req.Header.Set("CSRF-Token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return data, resp.StatusCode, nil
}

func (c *Client) csrfToken() string {
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == sessionCookie {
			return cookie.Value
		}
	}
	return ""
}

// parseCSRFToken extracts the token from a body like `CSRF_TOKEN = "abc";`
func parseCSRFToken(body string) (string, error) {
	cleaned := strings.NewReplacer(`"`, "", ";", "").Replace(body)
	parts := strings.SplitN(cleaned, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return "", &AuthenticationError{Reason: "malformed CSRF token response"}
	}
	return strings.TrimSpace(parts[1]), nil
}

// parseLoginError looks for `var ERROR_MSG = "...";` in the login page
func parseLoginError(body string) (string, bool) {
	pos := strings.Index(strings.ToUpper(body), "VAR ERROR_MSG")
	if pos == -1 {
		return "", false
	}

	rest := body[pos:]
	if end := strings.Index(rest, ";"); end != -1 {
		rest = rest[:end]
	}
	rest = strings.ReplaceAll(rest, `"`, "")

	parts := strings.SplitN(rest, "=", 2)
	if len(parts) != 2 {
		return "unknown login error", true
	}
	return strings.TrimSpace(parts[1]), true
}

// nonce builds the aid query parameter the web client sends
func nonce() string {
	ms := time.Now().UnixMilli()
	suffix := int64(math.Round(rand.Float64() * 1679616))
	return strconv.FormatInt(ms, 36) + strconv.FormatInt(suffix, 36)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
