package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skelly-dev/cnote/internal/extract"
)

func BenchmarkScanAndNarrow_MediumTree(b *testing.B) {
	root := b.TempDir()
	createSyntheticTree(b, root, 250)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := New(extract.New(nil), Options{Recursive: true}).Run([]string{root})
		require.False(b, res.HasErrors(), "scan reported errors: %+v", res.Issues)
		view := res.Registry.Narrow("shared", "group3")
		require.NotEmpty(b, view.Entries)
	}
}

// createSyntheticTree writes files spread over ten directories. Odd files
// declare tags on their second line and every directory carries a manifest.
func createSyntheticTree(tb testing.TB, root string, files int) {
	tb.Helper()

	manifests := make(map[string]*strings.Builder)
	for i := 0; i < files; i++ {
		dirName := fmt.Sprintf("dir%d", i%10)
		dir := filepath.Join(root, dirName)
		require.NoError(tb, os.MkdirAll(dir, 0755))

		name := fmt.Sprintf("file_%03d.c", i)
		header := fmt.Sprintf("// #: shared group%d file%d\n", i%7, i)
		if i%2 == 1 {
			header = "/* generated */\n" + header
		}
		require.NoError(tb, os.WriteFile(filepath.Join(dir, name), []byte(header+"int x;\n"), 0644))

		if manifests[dirName] == nil {
			manifests[dirName] = &strings.Builder{}
		}
		fmt.Fprintf(manifests[dirName], "%s #: listed batch%d\n", name, i%3)
	}

	for dirName, content := range manifests {
		require.NoError(tb, os.WriteFile(filepath.Join(root, dirName, ".tag"), []byte(content.String()), 0644))
	}
}
