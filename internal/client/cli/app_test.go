package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gophmart/gophmart/internal/client/config"
	"github.com/gophmart/gophmart/internal/logging"
)

func stubInputs(t *testing.T, answers []string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})

	var mu sync.Mutex
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		require.NotEmpty(t, answers, "more prompts than stubbed answers")
		answer := answers[0]
		answers = answers[1:]
		return answer, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return append([]byte(nil), password...), nil
	}
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func writeOK(w http.ResponseWriter, data any) {
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(raw)})
}

// storefrontStub is a minimal API server covering the endpoints the wired
// app touches during a login/logout round trip.
type storefrontStub struct {
	mu             sync.Mutex
	cartAuthHeader string
	cartLists      int
}

func (s *storefrontStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, map[string]any{
			"token": "tok-1",
			"user": map[string]any{
				"id": "u1", "role": "customer", "name": "Alice", "email": "a@b.com",
			},
		})
	})
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.cartAuthHeader = r.Header.Get("Authorization")
		s.cartLists++
		s.mu.Unlock()
		writeOK(w, []map[string]any{
			{"id": "m1", "product_id": "p1", "quantity": 2, "name": "lamp", "price": 4200},
		})
	})
	mux.HandleFunc("GET /api/wishlist", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, []map[string]any{})
	})
	mux.HandleFunc("GET /api/chat/conversations", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, []map[string]any{
			{"id": "c1", "other_party": map[string]any{"id": "u2", "name": "Bob"}, "unread_count": 2},
		})
	})
	mux.HandleFunc("GET /api/chat/unread-count", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, map[string]int{"count": 2})
	})
	return mux
}

func (s *storefrontStub) cartState() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartAuthHeader, s.cartLists
}

func setupApp(t *testing.T, url string) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerBaseURL = url
	cfg.DatabaseDSN = "file:" + t.Name() + "?mode=memory&cache=shared"

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	app, err := NewApp(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func TestApp_LoginLoadsMirrorsAndLogoutClears(t *testing.T) {
	silencePrintln(t)
	stub := &storefrontStub{}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	app := setupApp(t, srv.URL)
	ctx := context.Background()

	stubInputs(t, []string{"customer", "a@b.com"}, []byte("pw"))
	require.NoError(t, app.Login(ctx))

	require.True(t, app.isLoggedIn())
	assert.Equal(t, "Alice (customer)", app.getStatus())

	// the session transition refreshed the cart with the fresh token
	auth, _ := stub.cartState()
	assert.Equal(t, "Bearer tok-1", auth)
	require.Len(t, app.cart.Items(), 1)
	assert.Equal(t, 2, app.cart.TotalItems())
	assert.Equal(t, int64(8400), app.cart.TotalPrice())

	// chat polling started with the authenticated session
	require.Eventually(t, func() bool { return app.chat.Unread() == 2 },
		2*time.Second, time.Millisecond)

	require.NoError(t, app.Logout(ctx))

	assert.False(t, app.isLoggedIn())
	assert.Equal(t, "anonymous", app.getStatus())
	assert.Empty(t, app.cart.Items(), "logout clears the cart mirror")
	assert.Equal(t, 0, app.chat.Unread(), "logout clears chat state")
}

func TestApp_ShowCartPrintsTotals(t *testing.T) {
	silencePrintln(t)
	stub := &storefrontStub{}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	app := setupApp(t, srv.URL)
	ctx := context.Background()

	stubInputs(t, []string{"customer", "a@b.com"}, []byte("pw"))
	require.NoError(t, app.Login(ctx))

	var buf syncBuffer
	app.out = &buf
	require.NoError(t, app.ShowCart(ctx))

	out := buf.String()
	assert.Contains(t, out, "lamp")
	assert.Contains(t, out, "84.00")
	assert.Contains(t, out, "2 items")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
