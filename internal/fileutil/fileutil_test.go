package fileutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadPrefixHonorsLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	mustWriteFile(t, path, strings.Repeat("a", 2048))

	data, err := OSSource{}.ReadPrefix(path, 512)
	if err != nil {
		t.Fatalf("ReadPrefix failed: %v", err)
	}
	if len(data) != 512 {
		t.Fatalf("expected 512 bytes, got %d", len(data))
	}

	small := filepath.Join(dir, "small.txt")
	mustWriteFile(t, small, "#: x\n")
	data, err = OSSource{}.ReadPrefix(small, 512)
	if err != nil {
		t.Fatalf("ReadPrefix failed: %v", err)
	}
	if string(data) != "#: x\n" {
		t.Fatalf("expected whole small file, got %q", data)
	}
}

func TestReadPrefixMissingFile(t *testing.T) {
	_, err := OSSource{}.ReadPrefix(filepath.Join(t.TempDir(), "missing"), 512)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestReadPrefixRejectsDirectory(t *testing.T) {
	if _, err := (OSSource{}).ReadPrefix(t.TempDir(), 512); err == nil {
		t.Fatalf("expected error reading a directory")
	}
}

func TestAtomicWriteUnderLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", ".tag")

	err := WithLock(filepath.Join(dir, ".tag.lock"), func() error {
		return AtomicWrite(path, []byte("a.txt #: x\n"))
	})
	if err != nil {
		t.Fatalf("locked write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}
	if string(data) != "a.txt #: x\n" {
		t.Fatalf("unexpected content %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("failed to list dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestWithLockPropagatesError(t *testing.T) {
	want := errors.New("boom")
	got := WithLock(filepath.Join(t.TempDir(), "x.lock"), func() error { return want })
	if !errors.Is(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, []map[string]string{{"a": "<b>"}, {"c": "d"}}); err != nil {
		t.Fatalf("WriteJSONL failed: %v", err)
	}
	if buf.String() != "{\"a\":\"<b>\"}\n{\"c\":\"d\"}\n" {
		t.Fatalf("unexpected jsonl output %q", buf.String())
	}
}

func TestDedupeStringsKeepsFirstOccurrence(t *testing.T) {
	got := DedupeStrings([]string{"b", "a", "b", "c", "a"})
	if strings.Join(got, ",") != "b,a,c" {
		t.Fatalf("unexpected dedupe result %v", got)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
