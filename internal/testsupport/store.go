package testsupport

import (
	"context"
	"testing"

	"vetter/internal/config"
	"vetter/internal/records"
)

// MustOpenStore opens a records.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()

	store, err := records.Open(cfg)
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedRecord upserts a record for tests using the provided store.
func SeedRecord(t testing.TB, store *records.Store, record *records.Record) *records.Record {
	t.Helper()

	if err := store.Upsert(context.Background(), record); err != nil {
		t.Fatalf("store.Upsert: %v", err)
	}
	return record
}
