package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrShortRead is returned when a file yields fewer bytes than its size
// promised.
var ErrShortRead = errors.New("short read")

// OSSource reads files from the local filesystem.
type OSSource struct{}

// ReadPrefix reads at most limit bytes from the start of path. Files
// smaller than limit are read in full.
func (OSSource) ReadPrefix(path string, limit int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file at %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat file at %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("could not read %s: is a directory", path)
	}

	want := int64(limit)
	if info.Size() < want {
		want = info.Size()
	}
	buf := make([]byte, want)
	n, err := io.ReadFull(f, buf)
	if err != nil {
		return nil, fmt.Errorf("trouble reading file at %s (expected %d bytes, got %d): %w", path, want, n, ErrShortRead)
	}
	return buf, nil
}

// ReadFile reads the whole file.
func (OSSource) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
