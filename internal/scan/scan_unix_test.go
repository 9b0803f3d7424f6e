//go:build unix

package scan

import (
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skelly-dev/cnote/internal/extract"
)

func TestRunSkipsNonRegularFileArguments(t *testing.T) {
	root := t.TempDir()
	fifo := filepath.Join(root, "pipe")
	require.NoError(t, syscall.Mkfifo(fifo, 0644))
	mustWriteFile(t, filepath.Join(root, "a.txt"), "#: kept\n")

	done := make(chan *Result, 1)
	go func() {
		done <- New(extract.New(nil), Options{}).Run([]string{fifo, filepath.Join(root, "a.txt")})
	}()

	var res *Result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "scan blocked on a named pipe argument")
	}

	require.Len(t, res.Issues, 1)
	assert.Equal(t, fifo, res.Issues[0].File)
	assert.Equal(t, SeverityWarning, res.Issues[0].Severity)
	assert.Contains(t, res.Issues[0].Message, ErrNotRegular.Error())
	assert.Equal(t, 1, res.Files)
	assert.Equal(t, 1, res.Registry.EntryCount())
}
