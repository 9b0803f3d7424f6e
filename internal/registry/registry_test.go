package registry

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commit(t *testing.T, r *Registry, path string, filter Filter, tags ...string) (EntryID, bool) {
	t.Helper()
	stage := r.Stage(path)
	for _, tag := range tags {
		stage.AddTag(tag)
		require.NoError(t, r.Check(), "after adding %q to %s", tag, path)
	}
	id, ok := stage.Commit(filter)
	require.NoError(t, r.Check(), "after committing %s", path)
	return id, ok
}

func entryPaths(entries []*Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, filepath.Base(e.Path))
	}
	return out
}

func TestRegisterDedupesTagsAndEntries(t *testing.T) {
	r := New()

	a := r.RegisterTag("draft")
	b := r.RegisterTag("draft")
	assert.Equal(t, a, b)
	assert.Equal(t, 1, r.TagCount())

	e1 := r.RegisterEntry("notes.md")
	e2 := r.RegisterEntry("./notes.md")
	e3 := r.RegisterEntry(filepath.Join("sub", "..", "notes.md"))
	assert.Equal(t, e1, e2)
	assert.Equal(t, e1, e3)
	assert.Equal(t, 1, r.EntryCount())
	assert.True(t, filepath.IsAbs(r.Entry(e1).Path))
}

func TestIdsFollowInsertionOrder(t *testing.T) {
	r := New()
	for i := 0; i < 5; i++ {
		assert.Equal(t, TagID(i), r.RegisterTag(fmt.Sprintf("t%d", i)))
	}
	assert.Equal(t, TagID(2), r.RegisterTag("t2"))
}

func TestLinkIsSymmetricAndIdempotent(t *testing.T) {
	r := New()
	e := r.RegisterEntry("a.txt")
	tag := r.RegisterTag("x")

	require.True(t, r.Link(e, tag))
	require.False(t, r.Link(e, tag))
	require.NoError(t, r.Check())

	assert.Equal(t, []TagID{tag}, r.Entry(e).Tags())
	assert.Equal(t, []EntryID{e}, r.Tag(tag).Entries())
	assert.False(t, r.Link(EntryID(42), tag))
}

func TestStageCreatesEntryLazily(t *testing.T) {
	r := New()
	stage := r.Stage("empty.txt")
	_, ok := stage.Commit(Filter{})
	assert.False(t, ok)
	assert.Zero(t, r.EntryCount())

	id, ok := commit(t, r, "tagged.txt", Filter{}, "a", "b", "a")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, r.TagTexts(r.Entry(id)))
}

func TestStageRollbackUnwindsLinks(t *testing.T) {
	r := New()
	_, ok := commit(t, r, "keep.txt", Filter{}, "shared")
	require.True(t, ok)

	_, ok = commit(t, r, "drop.txt", NewFilter("wanted"), "shared", "fresh")
	require.False(t, ok)

	_, found := r.LookupEntry("drop.txt")
	assert.False(t, found)
	_, found = r.LookupTag("fresh")
	assert.False(t, found, "tag created only by the rejected entry should be removed")

	shared, found := r.LookupTag("shared")
	require.True(t, found)
	assert.Equal(t, []string{r.Entries()[0].Path}, r.EntryPaths(shared))
}

func TestStageRollbackNeverReusesIds(t *testing.T) {
	r := New()
	_, ok := commit(t, r, "drop.txt", NewFilter("nope"), "a")
	require.False(t, ok)

	id, ok := commit(t, r, "keep.txt", Filter{}, "b")
	require.True(t, ok)
	assert.Equal(t, EntryID(1), id)
	assert.Equal(t, TagID(1), r.RegisterTag("b"))
	assert.Nil(t, r.Entry(0))
	assert.Nil(t, r.Tag(0))
}

func TestStageOnExistingEntryKeepsEarlierLinks(t *testing.T) {
	r := New()
	first, ok := commit(t, r, "a.txt", Filter{}, "x")
	require.True(t, ok)

	stage := r.Stage("./a.txt")
	stage.AddTag("y")
	stage.abort()
	require.NoError(t, r.Check())

	entry := r.Entry(first)
	require.NotNil(t, entry)
	assert.Equal(t, []string{"x"}, r.TagTexts(entry))

	second, ok := commit(t, r, "a.txt", Filter{}, "x", "z")
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"x", "z"}, r.TagTexts(entry))
}

func TestTagsKeepDeclarationOrder(t *testing.T) {
	r := New()
	_, ok := commit(t, r, "first.txt", Filter{}, "draft", "zeta")
	require.True(t, ok)

	id, ok := commit(t, r, "second.txt", Filter{}, "released", "zeta", "draft")
	require.True(t, ok)
	assert.Equal(t, []string{"released", "zeta", "draft"}, r.TagTexts(r.Entry(id)))

	stage := r.Stage("second.txt")
	stage.AddTag("alpha")
	stage.abort()
	require.NoError(t, r.Check())
	assert.Equal(t, []string{"released", "zeta", "draft"}, r.TagTexts(r.Entry(id)))

	late, ok := commit(t, r, "third.txt", Filter{}, "zeta")
	require.True(t, ok)
	zeta, found := r.LookupTag("zeta")
	require.True(t, found)
	assert.Equal(t, []EntryID{0, id, late}, zeta.Entries())
}

func TestCommitTwiceIsNoop(t *testing.T) {
	r := New()
	stage := r.Stage("a.txt")
	stage.AddTag("x")
	id, ok := stage.Commit(Filter{})
	require.True(t, ok)

	again, ok := stage.Commit(NewFilter("other"))
	assert.True(t, ok)
	assert.Equal(t, id, again)
	stage.AddTag("late")
	_, found := r.LookupTag("late")
	assert.False(t, found)
}

func TestFilterOrSemantics(t *testing.T) {
	build := func(filter Filter) *Registry {
		r := New()
		commit(t, r, "A", filter, "x", "y")
		commit(t, r, "B", filter, "y", "z")
		commit(t, r, "C", filter, "w")
		return r
	}

	cases := []struct {
		name  string
		query []string
		want  []string
	}{
		{name: "shared tag", query: []string{"y"}, want: []string{"A", "B"}},
		{name: "empty query", query: nil, want: []string{"A", "B", "C"}},
		{name: "unknown tag", query: []string{"q"}, want: []string{}},
		{name: "union", query: []string{"x", "w"}, want: []string{"A", "C"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFilter(tc.query...)

			indexed := build(f)
			require.Empty(t, cmp.Diff(tc.want, entryPaths(indexed.Entries())), "filtered registration mismatch (-want +got)")

			full := build(Filter{})
			require.Empty(t, cmp.Diff(tc.want, entryPaths(full.Select(f))), "select mismatch (-want +got)")
		})
	}
}

func TestNewFilterIgnoresEmptyAndRepeats(t *testing.T) {
	f := NewFilter("", "a", "b", "a")
	assert.Equal(t, []string{"a", "b"}, f.Tags())
	assert.False(t, f.Empty())
	assert.True(t, NewFilter().Empty())
	assert.True(t, Filter{}.Match(nil))
}

func TestNarrowIntersectsSelection(t *testing.T) {
	r := New()
	commit(t, r, "A", Filter{}, "x", "y")
	commit(t, r, "B", Filter{}, "y", "z")
	commit(t, r, "C", Filter{}, "w")

	view := r.Narrow("y")
	assert.Equal(t, []string{"A", "B"}, entryPaths(view.Entries))
	assert.Equal(t, []string{"x", "y", "z"}, tagTexts(view.Tags))

	view = r.Narrow("y", "z")
	assert.Equal(t, []string{"B"}, entryPaths(view.Entries))
	assert.Equal(t, []string{"y", "z"}, tagTexts(view.Tags))

	view = r.Narrow("y", "missing")
	assert.Empty(t, view.Entries)
	assert.Empty(t, view.Tags)
	assert.Equal(t, []string{"missing"}, view.Unknown)

	view = r.Narrow()
	assert.Len(t, view.Entries, 3)
	assert.Len(t, view.Tags, 4)
}

func TestCheckDetectsBrokenSymmetry(t *testing.T) {
	r := New()
	_, ok := commit(t, r, "a.txt", Filter{}, "x")
	require.True(t, ok)

	r.Tag(0).entries.Remove(0)
	assert.Error(t, r.Check())
}

func tagTexts(tags []*Tag) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.Text)
	}
	return out
}
