// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	if err := AtomicWriteFile(path, []byte(`{"a":1}`), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("content = %q, want %q", data, `{"a":1}`)
	}

	// Overwrite must fully replace
	if err := AtomicWriteFile(path, []byte(`{"b":2}`), 0644); err != nil {
		t.Fatalf("AtomicWriteFile overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != `{"b":2}` {
		t.Errorf("content after overwrite = %q, want %q", data, `{"b":2}`)
	}

	// No temp files left behind
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %q", e.Name())
		}
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "data.json")

	if err := AtomicWriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file should exist: %v", err)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hi", 2, "hi"},
		{"hello", 3, "hel"},
		{"", 5, ""},
		{"test", 0, ""},
		{"こんにちは世界", 5, "こん..."},
	}

	for _, tc := range tests {
		got := TruncateRunes(tc.input, tc.maxLen)
		if got != tc.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.want)
		}
	}
}

func TestTruncateTitle(t *testing.T) {
	short := "short message"
	if got := TruncateTitle(short, 30); got != short {
		t.Errorf("TruncateTitle(%q, 30) = %q, want unchanged", short, got)
	}

	long := strings.Repeat("a", 40)
	got := TruncateTitle(long, 30)
	want := strings.Repeat("a", 30) + "..."
	if got != want {
		t.Errorf("TruncateTitle(long, 30) = %q, want %q", got, want)
	}

	// Exactly at the limit: no ellipsis
	exact := strings.Repeat("b", 30)
	if got := TruncateTitle(exact, 30); got != exact {
		t.Errorf("TruncateTitle(exact, 30) = %q, want unchanged", got)
	}
}

func TestOneLine(t *testing.T) {
	if got := OneLine("a\r\nb\nc"); got != "a b c" {
		t.Errorf("OneLine = %q, want %q", got, "a b c")
	}
}

func TestPadWidth(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"hi", 5, "hi   "},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello world"},
		{"", 3, "   "},
	}

	for _, tc := range tests {
		got := PadWidth(tc.input, tc.width)
		if got != tc.want {
			t.Errorf("PadWidth(%q, %d) = %q, want %q", tc.input, tc.width, got, tc.want)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	if got := TruncateWidth("hello world", 8); got != "hello..." {
		t.Errorf("TruncateWidth = %q, want %q", got, "hello...")
	}
	if got := TruncateWidth("hi", 8); got != "hi" {
		t.Errorf("TruncateWidth = %q, want unchanged", got)
	}
}
