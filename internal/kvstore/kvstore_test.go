// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package kvstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "store.json")
}

func TestOpen_MissingFile(t *testing.T) {
	kv, err := Open(storePath(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(kv.Keys()) != 0 {
		t.Errorf("new store should be empty, got %d keys", len(kv.Keys()))
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	kv, err := Open(storePath(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	type rec struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := kv.Set("settings", rec{Name: "abc", Count: 3}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got rec
	ok, err := kv.GetJSON("settings", &got)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if !ok {
		t.Fatal("key should exist")
	}
	if got.Name != "abc" || got.Count != 3 {
		t.Errorf("got %+v, want {abc 3}", got)
	}

	if err := kv.Delete("settings"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := kv.Get("settings"); ok {
		t.Error("key should be gone after Delete")
	}

	// Deleting a missing key is not an error
	if err := kv.Delete("settings"); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	kv, _ := Open(storePath(t))

	var into map[string]any
	ok, err := kv.GetJSON("nope", &into)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if ok {
		t.Error("missing key should report ok=false")
	}
	if into != nil {
		t.Error("missing key should leave destination untouched")
	}
}

func TestStore_ReopenPersists(t *testing.T) {
	path := storePath(t)

	kv, _ := Open(path)
	if err := kv.Set("chats", []string{"a", "b"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	var chats []string
	ok, err := reopened.GetJSON("chats", &chats)
	if err != nil || !ok {
		t.Fatalf("GetJSON after reopen: ok=%v err=%v", ok, err)
	}
	if len(chats) != 2 || chats[0] != "a" {
		t.Errorf("got %v, want [a b]", chats)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	kv, _ := Open(storePath(t))
	kv.Set("k", "value")

	raw, _ := kv.Get("k")
	raw[0] = 'X'

	raw2, _ := kv.Get("k")
	if string(raw2) != `"value"` {
		t.Errorf("stored value mutated through returned slice: %q", raw2)
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	path := storePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	if err == nil {
		t.Fatal("expected error for corrupt store file")
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Errorf("expected PersistenceError, got %T", err)
	}
}
