package exports

import (
	"bytes"
	"context"
	"testing"

	"rentledger/internal/blob"
)

func TestMemoryObjectStoreIsCreateOnly(t *testing.T) {
	store := NewMemoryObjectStore()
	ctx := context.Background()

	artifact, err := store.Put(ctx, "payments/a1.csv", []byte("receipt,amount\n"), "text/csv", map[string]any{"rows": 1})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if artifact.ID != "payments/a1.csv" || artifact.SizeBytes != 15 {
		t.Fatalf("artifact = %+v", artifact)
	}
	if artifact.URL != "https://object-store.local/payments/a1.csv?token=stub" {
		t.Fatalf("url = %q", artifact.URL)
	}
	if _, err := store.Put(ctx, "payments/a1.csv", []byte("x"), "text/csv", nil); err == nil {
		t.Fatal("expected duplicate key rejection")
	}

	got, payload, err := store.Get(ctx, "payments/a1.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ContentType != "text/csv" || !bytes.Equal(payload, []byte("receipt,amount\n")) {
		t.Fatalf("get = %+v %q", got, payload)
	}
	payload[0] = 'X'
	if _, again, _ := store.Get(ctx, "payments/a1.csv"); again[0] != 'r' {
		t.Fatal("stored payload mutated through returned slice")
	}
}

func TestMemoryObjectStoreListAndDelete(t *testing.T) {
	store := NewMemoryObjectStore()
	ctx := context.Background()

	for _, key := range []string{"payments/a.csv", "payments/b.csv", "expenses/c.csv"} {
		if _, err := store.Put(ctx, key, []byte("data"), "text/csv", nil); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	scoped, err := store.List(ctx, "payments/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("scoped list = %d, want 2", len(scoped))
	}
	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("full list = %d, want 3", len(all))
	}

	if existed, err := store.Delete(ctx, "payments/a.csv"); err != nil || !existed {
		t.Fatalf("delete = (%v, %v)", existed, err)
	}
	if existed, err := store.Delete(ctx, "payments/a.csv"); err != nil || existed {
		t.Fatalf("repeat delete = (%v, %v)", existed, err)
	}
	if _, _, err := store.Get(ctx, "payments/a.csv"); err == nil {
		t.Fatal("expected miss after delete")
	}
}

func TestBlobObjectStoreRoundTrip(t *testing.T) {
	store := NewBlobObjectStore(blob.NewMemory())
	ctx := context.Background()

	artifact, err := store.Put(ctx, "occupancy/x1.json", []byte(`{"rows":[]}`), "application/json", map[string]any{"rows": 0, "year": "2024"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if artifact.ID != "occupancy/x1.json" || artifact.ContentType != "application/json" {
		t.Fatalf("artifact = %+v", artifact)
	}
	if artifact.Metadata["rows"] != "0" || artifact.Metadata["year"] != "2024" {
		t.Fatalf("metadata = %+v", artifact.Metadata)
	}

	got, payload, err := store.Get(ctx, "occupancy/x1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SizeBytes != int64(len(payload)) || string(payload) != `{"rows":[]}` {
		t.Fatalf("get = %+v %q", got, payload)
	}

	listed, err := store.List(ctx, "occupancy/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "occupancy/x1.json" {
		t.Fatalf("list = %+v", listed)
	}

	if existed, err := store.Delete(ctx, "occupancy/x1.json"); err != nil || !existed {
		t.Fatalf("delete = (%v, %v)", existed, err)
	}
}

func TestMemoryAuditLogReturnsCopies(t *testing.T) {
	log := &MemoryAuditLog{}
	log.Record(context.Background(), AuditEntry{ID: "e1", Action: "report_export", Status: ExportStatusQueued})

	entries := log.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	entries[0].Action = "tampered"
	if log.Entries()[0].Action != "report_export" {
		t.Fatal("audit log mutated through returned slice")
	}
}
