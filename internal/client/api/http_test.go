package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gophmart/gophmart/internal/client/models"
	"github.com/gophmart/gophmart/internal/logging"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append(opts, WithLogger(logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))))
	c, err := NewHTTPClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestLogin_SendsCredentialsAndRole_ReturnsTokenAndUser(t *testing.T) {
	var gotPath, gotRole, gotBody string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRole = r.URL.Query().Get("role")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"t-123","user":{"id":"u1","role":"customer","name":"Alice","email":"a@b.com"}}}`))
	}))

	creds, err := c.Login(context.Background(), "a@b.com", "pw", models.RoleCustomer)
	require.NoError(t, err)
	require.Equal(t, "/api/auth/login", gotPath)
	require.Equal(t, "customer", gotRole)
	require.Contains(t, gotBody, `"email":"a@b.com"`)
	require.Equal(t, "t-123", creds.Token)
	require.Equal(t, "Alice", creds.User.Name)
}

func TestLogin_MissingToken_ValidationError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"user":{"id":"u1","role":"customer","name":"A","email":"a@b.com"}}}`))
	}))

	_, err := c.Login(context.Background(), "a@b.com", "pw", models.RoleCustomer)
	require.ErrorIs(t, err, ErrValidation)
}

func TestDo_AttachesBearerTokenAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}), WithTokenSource(func() string { return "t-123" }))

	_, err := c.ListCart(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer t-123", gotAuth)
	require.NotEmpty(t, gotReqID)
}

func TestDo_NoTokenMeansNoAuthHeader(t *testing.T) {
	var sawHeader bool

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}), WithTokenSource(func() string { return "" }))

	_, err := c.ListCart(context.Background())
	require.NoError(t, err)
	require.False(t, sawHeader)
}

func TestDo_ApplicationErrorSurfacedVerbatim(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"error":{"message":"insufficient stock"}}`))
	}))

	err := c.AddCartItem(context.Background(), "p1", 1)
	require.ErrorIs(t, err, ErrApplication)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "insufficient stock", apiErr.Message)
	require.False(t, apiErr.Retryable)
}

func TestDo_Unauthorized_InvokesHooksOnceAndReturnsAuthError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":{"message":"token expired"}}`))
	}))

	var cleared, redirected int
	c.SetAuthHooks(func() { cleared++ }, func() { redirected++ })

	err := c.ClearCart(context.Background())
	require.ErrorIs(t, err, ErrAuthentication)
	require.Equal(t, 1, cleared)
	require.Equal(t, 1, redirected)
}

func TestDo_UnauthorizedWithoutHooks_DoesNotPanic(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := c.ClearCart(context.Background())
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestDo_ConnectionFailure_IsRetryableTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from now on

	c, err := NewHTTPClient(srv.URL, WithLogger(logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))))
	require.NoError(t, err)

	_, err = c.ListCart(context.Background())
	require.ErrorIs(t, err, ErrTransient)
	require.True(t, IsRetryable(err))
}

func TestDo_ContextCancellation_NotRetryable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListCart(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, IsRetryable(err))
}

func TestDo_MalformedBody_ValidationError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":`)) // truncated
	}))

	_, err := c.ListConversations(context.Background())
	require.ErrorIs(t, err, ErrValidation)
}

func TestUnreadCount_DecodesCounter(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat/unread-count", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"count":7}}`))
	}))

	n, err := c.UnreadCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, n)
}

func TestAddWishlistItem_MissingMembershipID_ValidationError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{}}`))
	}))

	_, err := c.AddWishlistItem(context.Background(), "p1")
	require.ErrorIs(t, err, ErrValidation)
}

func TestMarkConversationRead_EscapesID(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	require.NoError(t, c.MarkConversationRead(context.Background(), "c 1"))
	require.Equal(t, "/api/chat/conversations/c%201/read", gotPath)
}

func TestErrorKinds_MatchOnlyThemselves(t *testing.T) {
	err := NewApplicationError("nope")
	require.ErrorIs(t, err, ErrApplication)
	require.False(t, errors.Is(err, ErrTransient))
	require.False(t, errors.Is(err, ErrAuthentication))
}
