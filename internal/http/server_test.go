package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/auth"
	"fintrack/internal/catalog"
	"fintrack/internal/core"
	appLog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store/memory"
	"fintrack/internal/storeclient"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("disk gone") }

type testEnv struct {
	server *httptest.Server
	client *storeclient.Client
	repo   *memory.Store
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	repo := memory.New()
	if opts.Transactions == nil {
		opts.Transactions = services.NewTransactionService(repo, catalog.Default(), nil)
	}
	if opts.Auth == nil {
		opts.Auth = auth.NewService(repo, auth.Options{SessionTTL: time.Hour, Cost: bcrypt.MinCost})
	}
	if opts.Logger == nil {
		opts.Logger = appLog.New(appLog.Config{Level: slog.LevelError, Output: io.Discard})
	}

	srv := NewServer(opts)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})

	client, err := storeclient.New(storeclient.Config{BaseURL: ts.URL + "/api/v1", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return &testEnv{server: ts, client: client, repo: repo}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.client.Signup(ctx, "Ann", "ann@example.com", "secret1"))
	_, err := e.client.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(env.server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	}

	notReady := newTestEnv(t, Options{Ready: failingPinger{}})
	resp, err := http.Get(notReady.server.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStoreRoundTrip(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.login(t)
	ctx := context.Background()

	created, err := env.client.CreateTransaction(ctx, core.KindIncome, core.Transaction{
		Title:    "Harvest",
		Amount:   "100",
		Date:     core.NewDate(2024, 3, 5),
		Category: "farm",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, core.KindIncome, created.Kind)

	incomes, err := env.client.ListTransactions(ctx, core.KindIncome)
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	assert.Equal(t, created.ID, incomes[0].ID)

	expenses, err := env.client.ListTransactions(ctx, core.KindExpense)
	require.NoError(t, err)
	assert.Empty(t, expenses)

	require.NoError(t, env.client.DeleteTransaction(ctx, core.KindIncome, created.ID))

	err = env.client.DeleteTransaction(ctx, core.KindIncome, created.ID)
	assert.Equal(t, http.StatusNotFound, storeclient.StatusOf(err))
}

func TestTransactionsAreScopedToUser(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.login(t)
	ctx := context.Background()

	salary, err := env.client.CreateTransaction(ctx, core.KindIncome, core.Transaction{
		Title:    "Ann salary",
		Amount:   "900",
		Date:     core.NewDate(2024, 3, 1),
		Category: "media",
	})
	require.NoError(t, err)

	bob, err := storeclient.New(storeclient.Config{BaseURL: env.server.URL + "/api/v1", Timeout: 5 * time.Second})
	require.NoError(t, err)
	require.NoError(t, bob.Signup(ctx, "Bob", "bob@example.com", "secret2"))
	_, err = bob.Login(ctx, "bob@example.com", "secret2")
	require.NoError(t, err)

	incomes, err := bob.ListTransactions(ctx, core.KindIncome)
	require.NoError(t, err)
	assert.Empty(t, incomes)

	err = bob.DeleteTransaction(ctx, core.KindIncome, salary.ID)
	assert.Equal(t, http.StatusNotFound, storeclient.StatusOf(err))

	incomes, err = env.client.ListTransactions(ctx, core.KindIncome)
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	assert.Equal(t, "Ann salary", incomes[0].Title)
}

func TestValidationIsUnprocessable(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.login(t)

	_, err := env.client.CreateTransaction(context.Background(), core.KindExpense, core.Transaction{
		Title:    "Bad",
		Amount:   "-5",
		Date:     core.NewDate(2024, 3, 5),
		Category: "farm",
	})

	var te *storeclient.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnprocessableEntity, te.StatusCode)
	assert.Equal(t, "validation_error", te.Code)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, Options{})

	_, err := env.client.ListTransactions(context.Background(), core.KindIncome)
	assert.True(t, storeclient.IsUnauthorized(err))

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/get-incomes", nil)
	req.Header.Set("Authorization", "Bearer not-a-session")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignupAndLoginErrors(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()
	require.NoError(t, env.client.Signup(ctx, "Ann", "ann@example.com", "secret1"))

	err := env.client.Signup(ctx, "Ann", "ann@example.com", "secret1")
	assert.Equal(t, http.StatusConflict, storeclient.StatusOf(err))

	err = env.client.Signup(ctx, "", "bob@example.com", "secret1")
	assert.Equal(t, http.StatusBadRequest, storeclient.StatusOf(err))

	_, err = env.client.Login(ctx, "ann@example.com", "nope-nope")
	assert.Equal(t, http.StatusUnauthorized, storeclient.StatusOf(err))
}

func TestLogoutEndsSession(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.login(t)
	token := env.client.Token().AccessToken

	req, _ := http.NewRequest(http.MethodPost, env.server.URL+"/api/v1/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = env.client.ListTransactions(context.Background(), core.KindIncome)
	assert.True(t, storeclient.IsUnauthorized(err))
}

func TestMalformedBody(t *testing.T) {
	env := newTestEnv(t, Options{})

	resp, err := http.Post(env.server.URL+"/api/v1/login", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(env.server.URL+"/api/v1/login", "text/plain", strings.NewReader("hi"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestRateLimitOnPost(t *testing.T) {
	env := newTestEnv(t, Options{RateLimitPerMinute: 2})
	body := []byte(`{"email":"x@example.com","password":"whatever"}`)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Post(env.server.URL+"/api/v1/login", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestUnknownRouteIsJSON(t *testing.T) {
	env := newTestEnv(t, Options{})

	resp, err := http.Get(env.server.URL + "/api/v1/get-loans")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
