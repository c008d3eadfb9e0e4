package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/store/storetest"
)

func quietFactory() Factory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "fintrack.db")}},
		{"bolt", Config{Type: BoltBackend, BoltDBPath: filepath.Join(dir, "fintrack.bolt")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := quietFactory().CreateBackend(context.Background(), tt.config)
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, res.Close()) })

			ctx := context.Background()
			tx := storetest.Transaction("a1", core.KindExpense, "Lunch", "9.5", 3)
			require.NoError(t, res.Repository.Insert(ctx, storetest.Owner, tx))
			got, err := res.Repository.List(ctx, storetest.Owner, core.KindExpense)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "a1", got[0].ID)
		})
	}
}

func TestCreateBackendRejectsBadConfig(t *testing.T) {
	tests := []Config{
		{Type: "postgres"},
		{Type: SQLiteBackend},
		{Type: BoltBackend},
		{Type: SheetsBackend},
	}
	for _, cfg := range tests {
		_, err := quietFactory().CreateBackend(context.Background(), cfg)
		assert.Error(t, err, "config %+v", cfg)
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         "sheets",
		GoogleSpreadsheetID: "sheet-1",
		GoogleUsersSheet:    "People",
	})
	require.NoError(t, err)
	assert.Equal(t, SheetsBackend, cfg.Type)
	assert.Equal(t, "sheet-1", cfg.GoogleSpreadsheetID)
	assert.Equal(t, "People", cfg.GoogleUsersSheet)
}

func TestBackendResultCloseWithoutCleanup(t *testing.T) {
	var nilResult *BackendResult
	assert.NoError(t, nilResult.Close())
	assert.NoError(t, (&BackendResult{}).Close())
	assert.Len(t, GetBackendTypes(), 4)
	for _, bt := range GetBackendTypes() {
		assert.True(t, bt.IsValid(), bt.String())
	}
}
