package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func newTempFS(t *testing.T) Store {
	t.Helper()
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	return store
}

func TestFilesystemPutGetHeadListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempFS(t)

	info, err := store.Put(ctx, "reports/arrears.csv", bytes.NewReader([]byte("hello")), PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"table": "arrears_by_tenant"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "reports/arrears.csv" || info.Size != 5 {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.ETag == "" {
		t.Fatal("etag expected")
	}

	// duplicate should fail
	if _, err := store.Put(ctx, "reports/arrears.csv", bytes.NewReader([]byte("x")), PutOptions{}); err == nil {
		t.Fatal("expected duplicate failure")
	}

	head, err := store.Head(ctx, "reports/arrears.csv")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ContentType != "text/csv" || head.Metadata["table"] != "arrears_by_tenant" {
		t.Fatalf("unexpected head %+v", head)
	}

	got, rc, err := store.Get(ctx, "reports/arrears.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(body) != "hello" || got.ETag != head.ETag {
		t.Fatalf("unexpected get artifacts %q %+v", body, got)
	}

	list, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "reports/arrears.csv" {
		t.Fatalf("unexpected list %+v", list)
	}

	url, err := store.PresignURL(ctx, "reports/arrears.csv", SignedURLOptions{})
	if err != nil || url == "" {
		t.Fatalf("presign: %v %q", err, url)
	}

	deleted, err := store.Delete(ctx, "reports/arrears.csv")
	if err != nil || !deleted {
		t.Fatalf("delete = (%v, %v)", deleted, err)
	}
	deleted, err = store.Delete(ctx, "reports/arrears.csv")
	if err != nil || deleted {
		t.Fatalf("repeat delete = (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestFilesystemRejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	store := newTempFS(t)

	for _, key := range []string{"", "  ", "../escape", "a/../../b", "/absolute"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestFilesystemPresignRejectsNonGet(t *testing.T) {
	ctx := context.Background()
	store := newTempFS(t)

	if _, err := store.PresignURL(ctx, "k", SignedURLOptions{Method: "PUT"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestFilesystemDriver(t *testing.T) {
	store := newTempFS(t)
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
}
