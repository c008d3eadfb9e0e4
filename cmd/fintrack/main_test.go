package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/auth"
	"fintrack/internal/catalog"
	apphttp "fintrack/internal/http"
	appLog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store/memory"
)

type cliEnv struct {
	dir       string
	config    string
	tokenFile string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	repo := memory.New()
	srv := apphttp.NewServer(apphttp.Options{
		Transactions: services.NewTransactionService(repo, catalog.Default(), nil),
		Auth:         auth.NewService(repo, auth.Options{SessionTTL: time.Hour, Cost: bcrypt.MinCost}),
		Logger:       appLog.New(appLog.Config{Level: slog.LevelError, Output: io.Discard}),
	})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})

	dir := t.TempDir()
	env := &cliEnv{
		dir:       dir,
		config:    filepath.Join(dir, "config.yaml"),
		tokenFile: filepath.Join(dir, "session", "token.json"),
	}
	cfg := "api_url: " + ts.URL + "/api/v1\n" +
		"token_file: " + env.tokenFile + "\n" +
		"output_dir: " + filepath.Join(dir, "reports") + "\n" +
		"format: html\n" +
		"timeout: 5s\n"
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o600))
	return env
}

func (e *cliEnv) run(args ...string) (string, error) {
	return e.runContext(context.Background(), args...)
}

func (e *cliEnv) runContext(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(&out, strings.NewReader(""))
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(args...)
	require.NoError(t, err, "fintrack %s", strings.Join(args, " "))
	return out
}

func (e *cliEnv) login(t *testing.T) {
	t.Helper()
	e.mustRun(t, "signup", "--name", "Ann", "--email", "ann@example.com", "--password", "secret1")
	e.mustRun(t, "login", "--email", "ann@example.com", "--password", "secret1")
}

func TestSessionLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "signup", "--name", "Ann", "--email", "ann@example.com", "--password", "secret1")
	assert.Contains(t, out, "Account created for ann@example.com")

	out = env.mustRun(t, "login", "--email", "ann@example.com", "--password", "secret1")
	assert.Contains(t, out, "Logged in as ann@example.com")

	info, err := os.Stat(env.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err := loadToken(env.tokenFile)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)

	env.mustRun(t, "logout")
	_, err = os.Stat(env.tokenFile)
	assert.True(t, os.IsNotExist(err))

	_, err = env.run("list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fintrack login")
}

func TestLoginWithWrongPassword(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "signup", "--name", "Ann", "--email", "ann@example.com", "--password", "secret1")

	_, err := env.run("login", "--email", "ann@example.com", "--password", "wrong")
	assert.Error(t, err)
	_, statErr := os.Stat(env.tokenFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPasswordPrompt(t *testing.T) {
	var out bytes.Buffer
	pw, err := readSecret(&out, strings.NewReader("hunter22\n"), "Password: ", "")
	require.NoError(t, err)
	assert.Equal(t, "hunter22", pw)
	assert.Equal(t, "Password: ", out.String())

	pw, err = readSecret(&out, strings.NewReader(""), "Password: ", "given")
	require.NoError(t, err)
	assert.Equal(t, "given", pw)

	_, err = readSecret(&out, strings.NewReader(""), "Password: ", "")
	assert.Error(t, err)
}

func TestAddListAndTotals(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out := env.mustRun(t, "add", "income", "--title", "Harvest sale", "--amount", "150,50", "--date", "2024-03-05", "--category", "farm")
	assert.Contains(t, out, "Added income")
	assert.Contains(t, out, "+K150.50")
	env.mustRun(t, "add", "income", "--title", "Ad revenue", "--amount", "20", "--date", "2024-04-01", "--category", "media")
	env.mustRun(t, "add", "expense", "--title", "Seeds", "--amount", "30.25", "--date", "2024-03-10", "--category", "farm")

	out = env.mustRun(t, "list", "incomes", "--month", "March")
	assert.Contains(t, out, "Income for the month of March")
	assert.Contains(t, out, "Harvest sale")
	assert.NotContains(t, out, "Ad revenue")
	assert.Contains(t, out, "Total Income: +K150.50")

	out = env.mustRun(t, "list", "--category", "farm")
	assert.Contains(t, out, "Income from the farm category")
	assert.Contains(t, out, "Expense from the farm category")
	assert.Contains(t, out, "Total Expense: -K30.25")

	out = env.mustRun(t, "totals")
	assert.Contains(t, out, "Income:  K170.50")
	assert.Contains(t, out, "Expense: K30.25")
	assert.Contains(t, out, "Balance: K140.25")

	out = env.mustRun(t, "totals", "--month", "March", "--by-category")
	assert.Contains(t, out, "Balance: K120.25")
	assert.Contains(t, out, "Income by category")
}

func TestAddRejectsInvalidInput(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad amount", []string{"add", "expense", "--title", "Fuel", "--amount", "abc", "--category", "farm"}},
		{"negative amount", []string{"add", "expense", "--title", "Fuel", "--amount", "-4", "--category", "farm"}},
		{"unknown category", []string{"add", "expense", "--title", "Fuel", "--amount", "4", "--category", "boats"}},
		{"bad kind", []string{"add", "gift", "--title", "Fuel", "--amount", "4", "--category", "farm"}},
		{"bad date", []string{"add", "income", "--title", "Fuel", "--amount", "4", "--category", "farm", "--date", "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(tt.args...)
			assert.Error(t, err)
		})
	}

	out := env.mustRun(t, "list", "expenses")
	assert.Contains(t, out, "Total Expense: -K0.00")
}

func TestDelete(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out := env.mustRun(t, "add", "expense", "--title", "Laundry", "--amount", "8", "--date", "2024-05-02", "--category", "laundry")
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 3)
	id := strings.TrimSuffix(fields[2], ":")

	out = env.mustRun(t, "delete", "expense", id)
	assert.Contains(t, out, "Deleted expense "+id)

	out = env.mustRun(t, "list", "expenses")
	assert.NotContains(t, out, "Laundry")

	_, err := env.run("delete", "expense", id)
	assert.Error(t, err)
}

func TestListRejectsUnknownMonth(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	_, err := env.run("list", "--month", "march")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "January, February, March")
}

func TestCancelledContextStopsCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)
	env.mustRun(t, "add", "expense", "--title", "Seeds", "--amount", "30", "--date", "2024-03-10", "--category", "farm")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := env.runContext(ctx, "list", "expenses")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, out, "Seeds")
}

func TestExport(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)
	env.mustRun(t, "add", "income", "--title", "Harvest sale", "--amount", "150", "--date", "2024-03-05", "--category", "farm")
	env.mustRun(t, "add", "expense", "--title", "Seeds", "--amount", "30", "--date", "2024-03-10", "--category", "farm")

	out := env.mustRun(t, "export", "--month", "March")
	path := filepath.Join(env.dir, "reports", "filtered-income-expenses.html")
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Income for the month of March")
	assert.Contains(t, string(data), "Harvest sale")
	assert.Contains(t, string(data), "Seeds")

	out = env.mustRun(t, "export", "--format", "pdf", "--output-dir", filepath.Join(env.dir, "pdf"))
	assert.Contains(t, out, "filtered-income-expenses.pdf")

	_, err = env.run("export", "--format", "docx")
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "categories")
	for _, tag := range catalog.Default().Tags() {
		assert.Contains(t, out, tag)
	}

	custom := filepath.Join(env.dir, "categories.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("categories:\n  - tag: boats\n    label: Boats\n"), 0o600))
	out = env.mustRun(t, "categories", "--categories-file", custom)
	assert.Contains(t, out, "boats")
	assert.NotContains(t, out, "farm")
}
