package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skelly-dev/cnote/internal/fileutil"
	"github.com/skelly-dev/cnote/internal/manifest"
	"github.com/skelly-dev/cnote/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSource serves files from memory and records the budgets requested.
type memSource struct {
	files  map[string]string
	limits []int
}

func (m *memSource) ReadPrefix(path string, limit int) ([]byte, error) {
	m.limits = append(m.limits, limit)
	content, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	if len(content) > limit {
		content = content[:limit]
	}
	return []byte(content), nil
}

func (m *memSource) ReadFile(path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

func tagsOf(t *testing.T, reg *registry.Registry, path string) []string {
	t.Helper()
	entry, ok := reg.LookupEntry(path)
	require.True(t, ok, "expected entry for %s", path)
	return reg.TagTexts(entry)
}

func TestIndexFileFirstLine(t *testing.T) {
	src := &memSource{files: map[string]string{"a.txt": "#: alpha beta\n#: ignored\n"}}
	reg := registry.New()

	_, ok, err := New(src).IndexFile(reg, "a.txt", registry.Filter{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"alpha", "beta"}, tagsOf(t, reg, "a.txt"))
	_, found := reg.LookupTag("ignored")
	assert.False(t, found, "second line must not be read when the first declares tags")
}

func TestIndexFileSecondLineFallback(t *testing.T) {
	src := &memSource{files: map[string]string{"main.cpp": "// a C++ file\n#: released draft\nint main() {}\n"}}
	reg := registry.New()

	_, ok, err := New(src).IndexFile(reg, "main.cpp", registry.Filter{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"released", "draft"}, tagsOf(t, reg, "main.cpp"))
	assert.Equal(t, 1, reg.EntryCount())
}

func TestIndexFileKeepsDeclaredOrderAcrossFiles(t *testing.T) {
	src := &memSource{files: map[string]string{
		"a.txt": "#: draft\n",
		"b.txt": "// c++\n#: released draft\n",
	}}
	reg := registry.New()
	x := New(src)

	for _, path := range []string{"a.txt", "b.txt"} {
		_, ok, err := x.IndexFile(reg, path, registry.Filter{})
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, []string{"released", "draft"}, tagsOf(t, reg, "b.txt"))
	require.NoError(t, reg.Check())
}

func TestIndexFileNeverReadsThirdLine(t *testing.T) {
	src := &memSource{files: map[string]string{"a.txt": "one\ntwo\n#: three\n"}}
	reg := registry.New()

	_, ok, err := New(src).IndexFile(reg, "a.txt", registry.Filter{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, reg.EntryCount())
	assert.Zero(t, reg.TagCount())
}

func TestIndexFileNoSecondLineWithoutNewline(t *testing.T) {
	located, err := New(&memSource{files: map[string]string{"a": "plain text"}}).FileTags("a")
	require.NoError(t, err)
	assert.Empty(t, located.Tags)
	assert.Equal(t, -1, located.Line)
}

func TestIndexFileBoundedRead(t *testing.T) {
	line := strings.Repeat(" ", DefaultReadLimit) + "#: late"
	src := &memSource{files: map[string]string{"a.txt": line}}
	reg := registry.New()

	_, ok, err := New(src).IndexFile(reg, "a.txt", registry.Filter{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []int{DefaultReadLimit}, src.limits)
}

func TestIndexFileTruncatesOversizedSourceReads(t *testing.T) {
	x := New(greedySource{content: strings.Repeat("x", 100) + "\n#: hidden"}, WithReadLimit(64))
	located, err := x.FileTags("any")
	require.NoError(t, err)
	assert.Empty(t, located.Tags)
}

type greedySource struct{ content string }

func (g greedySource) ReadPrefix(string, int) ([]byte, error) { return []byte(g.content), nil }
func (g greedySource) ReadFile(string) ([]byte, error)        { return []byte(g.content), nil }

func TestIndexFileSoftFailure(t *testing.T) {
	reg := registry.New()
	_, ok, err := New(&memSource{}).IndexFile(reg, "missing.txt", registry.Filter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, ok)
	assert.Zero(t, reg.EntryCount())
}

func TestIndexFileMissingOnDisk(t *testing.T) {
	_, _, err := New(nil).IndexFile(registry.New(), filepath.Join(t.TempDir(), "nope"), registry.Filter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, errors.Is(err, fileutil.ErrShortRead))
}

func TestIndexFileFilterEvicts(t *testing.T) {
	src := &memSource{files: map[string]string{
		"A": "#: x y",
		"B": "#: y z",
		"C": "#: w",
	}}
	reg := registry.New()
	x := New(src)
	filter := registry.NewFilter("y")

	for _, path := range []string{"A", "B", "C"} {
		_, _, err := x.IndexFile(reg, path, filter)
		require.NoError(t, err)
		require.NoError(t, reg.Check())
	}

	assert.Equal(t, 2, reg.EntryCount())
	_, found := reg.LookupEntry("C")
	assert.False(t, found)
	_, found = reg.LookupTag("w")
	assert.False(t, found)
}

func TestWithDialectsLimitsCommentSkipping(t *testing.T) {
	src := &memSource{files: map[string]string{"a.tex": "% #: paper"}}
	x := New(src, WithDialects(nil))
	located, err := x.FileTags("a.tex")
	require.NoError(t, err)
	assert.Empty(t, located.Tags)
}

func TestClampReadLimit(t *testing.T) {
	assert.Equal(t, DefaultReadLimit, ClampReadLimit(0))
	assert.Equal(t, MinReadLimit, ClampReadLimit(1))
	assert.Equal(t, MaxReadLimit, ClampReadLimit(1<<20))
	assert.Equal(t, 1000, ClampReadLimit(1000))
}

func TestIndexManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := &memSource{files: map[string]string{
		manifest.Path(dir): "notes.md #: draft important\nold.md #: archived\n",
	}}
	reg := registry.New()

	res, err := New(src).IndexManifest(reg, dir, registry.Filter{})
	require.NoError(t, err)
	require.NoError(t, reg.Check())
	assert.True(t, res.Found)
	assert.Equal(t, 2, res.Records)
	assert.Equal(t, 2, res.Admitted)

	assert.Equal(t, 2, reg.EntryCount())
	assert.Equal(t, 3, reg.TagCount())
	assert.Equal(t, []string{"draft", "important"}, tagsOf(t, reg, filepath.Join(dir, "notes.md")))
	assert.Equal(t, []string{"archived"}, tagsOf(t, reg, filepath.Join(dir, "old.md")))

	for _, text := range []string{"draft", "important", "archived"} {
		tag, ok := reg.LookupTag(text)
		require.True(t, ok)
		assert.Equal(t, 1, tag.Len())
	}
}

func TestIndexManifestMalformedLineAborts(t *testing.T) {
	dir := t.TempDir()
	src := &memSource{files: map[string]string{
		manifest.Path(dir): "a.txt #: x\nb.txt nope\nc.txt #: y\n",
	}}
	reg := registry.New()

	res, err := New(src).IndexManifest(reg, dir, registry.Filter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrMissingMarker)
	assert.Equal(t, 1, res.Records)

	assert.Equal(t, []string{"x"}, tagsOf(t, reg, filepath.Join(dir, "a.txt")))
	_, found := reg.LookupEntry(filepath.Join(dir, "b.txt"))
	assert.False(t, found)
	_, found = reg.LookupEntry(filepath.Join(dir, "c.txt"))
	assert.False(t, found)
}

func TestIndexManifestAbsent(t *testing.T) {
	reg := registry.New()
	res, err := New(&memSource{}).IndexManifest(reg, t.TempDir(), registry.Filter{})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Zero(t, reg.EntryCount())
}

func TestManifestAndFileShareEntry(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.md")
	src := &memSource{files: map[string]string{
		manifest.Path(dir): "./notes.md #: from-manifest\n",
		notes:              "#: from-file\n",
	}}
	reg := registry.New()
	x := New(src)

	_, err := x.IndexManifest(reg, dir, registry.Filter{})
	require.NoError(t, err)
	_, _, err = x.IndexFile(reg, filepath.Join(dir, ".", "sub", "..", "notes.md"), registry.Filter{})
	require.NoError(t, err)

	require.NoError(t, reg.Check())
	assert.Equal(t, 1, reg.EntryCount())
	assert.Equal(t, []string{"from-manifest", "from-file"}, tagsOf(t, reg, notes))
}

func TestIndexManifestFilter(t *testing.T) {
	dir := t.TempDir()
	src := &memSource{files: map[string]string{
		manifest.Path(dir): "a #: keep\nb #: drop\nc #: keep other\n",
	}}
	reg := registry.New()

	res, err := New(src).IndexManifest(reg, dir, registry.NewFilter("keep"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 2, res.Admitted)
	_, found := reg.LookupTag("drop")
	assert.False(t, found)
	require.NoError(t, reg.Check())
}
