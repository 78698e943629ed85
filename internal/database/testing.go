package database

import "testing"

// NewTestDB creates an in-memory test database and registers cleanup.
// Exported so other packages can use it in their tests.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewTest()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}
