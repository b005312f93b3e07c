package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gophmart/gophmart/internal/client/models"
	"github.com/gophmart/gophmart/internal/common"
	"github.com/gophmart/gophmart/internal/logging"
)

const (
	defaultUserAgent      = "gophmart-client/0.1"
	defaultRequestTimeout = 10 * time.Second

	// maxResponseBody bounds how much of a response we are willing to read.
	maxResponseBody = 1 << 20
)

// HTTPClient talks to the storefront HTTP API. It attaches the current
// bearer token to every request, maps failures to the Error taxonomy and
// invokes the registered auth hooks when the server rejects the credential.
type HTTPClient struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       logging.Logger

	tokenSource func() string

	mu              sync.Mutex
	clearAuth       func()
	redirectToLogin func()
}

var _ Client = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) { c.userAgent = ua }
}

// WithTokenSource sets the callback supplying the current bearer token.
// An empty return means the request goes out unauthenticated.
func WithTokenSource(fn func() string) Option {
	return func(c *HTTPClient) { c.tokenSource = fn }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient builds a client for the given base URL, e.g.
// "http://127.0.0.1:8080".
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	c := &HTTPClient{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultRequestTimeout},
		userAgent: defaultUserAgent,
		log:       logging.NewSlogLogger(slog.Default()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetAuthHooks registers the callbacks invoked when the server rejects the
// current credential on any request: clearAuth tears the session down,
// redirectToLogin tells the UI layer to send the user to the login screen.
// The session manager registers these during wiring; until then a rejected
// credential only surfaces as an authentication error.
func (c *HTTPClient) SetAuthHooks(clearAuth, redirectToLogin func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearAuth = clearAuth
	c.redirectToLogin = redirectToLogin
}

func (c *HTTPClient) authRejected() {
	c.mu.Lock()
	clear, redirect := c.clearAuth, c.redirectToLogin
	c.mu.Unlock()

	if clear != nil {
		clear()
	}
	if redirect != nil {
		redirect()
	}
}

// envelope is the common response frame of the storefront API.
type envelope struct {
	Success bool `json:"success"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
	Data json.RawMessage `json:"data"`
}

// do performs one request/response round trip. A non-nil body is sent as
// JSON; a non-nil dest receives the envelope's data field.
func (c *HTTPClient) do(ctx context.Context, method string, rel *url.URL, body any, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set(common.AuthHeaderName, "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Debug(ctx, "request failed", "method", method, "path", rel.Path, "request_id", requestID, "error", err)
		return NewTransientError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return NewTransientError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn(ctx, "credential rejected", "method", method, "path", rel.Path, "request_id", requestID)
		c.authRejected()
		return NewAuthenticationError("credential rejected")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return NewApplicationError(fmt.Sprintf("server returned status %d", resp.StatusCode))
		}
		return NewValidationError("malformed response", err)
	}

	if !env.Success {
		msg := "request rejected"
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return NewApplicationError(msg)
	}

	if dest != nil {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return NewValidationError("malformed response data", err)
		}
	}
	return nil
}

func pathURL(path string) *url.URL {
	return &url.URL{Path: path}
}

func rolePathURL(path string, role models.Role) *url.URL {
	values := url.Values{}
	values.Set("role", string(role))
	return &url.URL{Path: path, RawQuery: values.Encode()}
}

// Login authenticates with email/password for the given role and returns the
// bearer token together with the authoritative profile.
func (c *HTTPClient) Login(ctx context.Context, email, password string, role models.Role) (Credentials, error) {
	body := map[string]string{"email": email, "password": password}
	var creds Credentials
	if err := c.do(ctx, http.MethodPost, rolePathURL("/api/auth/login", role), body, &creds); err != nil {
		return Credentials{}, err
	}
	if creds.Token == "" || creds.User == nil {
		return Credentials{}, NewValidationError("login response missing token or user", nil)
	}
	return creds, nil
}

// Signup submits a new account application. It does not establish a session;
// the account must be verified via OTP and then logged in.
func (c *HTTPClient) Signup(ctx context.Context, req SignupRequest, role models.Role) error {
	return c.do(ctx, http.MethodPost, rolePathURL("/api/auth/signup", role), req, nil)
}

// VerifyOTP confirms the one-time code sent during signup.
func (c *HTTPClient) VerifyOTP(ctx context.Context, email, otp string, role models.Role) error {
	body := map[string]string{"email": email, "otp": otp}
	return c.do(ctx, http.MethodPost, rolePathURL("/api/auth/verify-otp", role), body, nil)
}

// ResendOTP requests a fresh one-time code.
func (c *HTTPClient) ResendOTP(ctx context.Context, email string, role models.Role) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, rolePathURL("/api/auth/resend-otp", role), body, nil)
}

// WhoAmI returns the profile belonging to the current bearer token.
func (c *HTTPClient) WhoAmI(ctx context.Context) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := c.do(ctx, http.MethodGet, pathURL("/api/auth/me"), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) ListCart(ctx context.Context) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := c.do(ctx, http.MethodGet, pathURL("/api/cart"), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) AddCartItem(ctx context.Context, productID string, quantity int) error {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	return c.do(ctx, http.MethodPost, pathURL("/api/cart"), body, nil)
}

func (c *HTTPClient) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	body := map[string]any{"quantity": quantity}
	return c.do(ctx, http.MethodPut, pathURL("/api/cart/"+url.PathEscape(itemID)), body, nil)
}

func (c *HTTPClient) RemoveCartItem(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, pathURL("/api/cart/"+url.PathEscape(itemID)), nil, nil)
}

func (c *HTTPClient) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, pathURL("/api/cart"), nil, nil)
}

func (c *HTTPClient) ListWishlist(ctx context.Context) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := c.do(ctx, http.MethodGet, pathURL("/api/wishlist"), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddWishlistItem creates the membership row server-side and returns its
// identity; the caller synthesizes the local item from it.
func (c *HTTPClient) AddWishlistItem(ctx context.Context, productID string) (Membership, error) {
	body := map[string]string{"product_id": productID}
	var m Membership
	if err := c.do(ctx, http.MethodPost, pathURL("/api/wishlist"), body, &m); err != nil {
		return Membership{}, err
	}
	if m.ID == "" {
		return Membership{}, NewValidationError("wishlist response missing membership id", nil)
	}
	return m, nil
}

func (c *HTTPClient) RemoveWishlistItem(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, pathURL("/api/wishlist/"+url.PathEscape(productID)), nil, nil)
}

func (c *HTTPClient) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := c.do(ctx, http.MethodGet, pathURL("/api/chat/conversations"), nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (c *HTTPClient) UnreadCount(ctx context.Context) (int, error) {
	var payload struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, pathURL("/api/chat/unread-count"), nil, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

func (c *HTTPClient) MarkConversationRead(ctx context.Context, conversationID string) error {
	path := "/api/chat/conversations/" + url.PathEscape(conversationID) + "/read"
	return c.do(ctx, http.MethodPost, pathURL(path), nil, nil)
}
