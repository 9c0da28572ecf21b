package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"askgreg/internal/preference/sink"
)

// MustOpenSQLite opens a SQLite preference sink under the test's temp dir and
// registers cleanup.
func MustOpenSQLite(t testing.TB) *sink.SQLite {
	t.Helper()

	store, err := sink.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "preferences.db"))
	if err != nil {
		t.Fatalf("sink.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
