// Package registry holds the bidirectional index between tags and the
// entries (files) that carry them.
//
// Tags and entries live in two append-only arenas and refer to each other
// only by id. Ids are assigned in insertion order and never reused; a
// record removed by a rolled-back registration leaves a tombstone behind.
package registry

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// TagID identifies a Tag within one Registry.
type TagID uint32

// EntryID identifies an Entry within one Registry.
type EntryID uint32

// Tag is a distinct tag text and the entries that carry it. entries and
// linked hold the same ids; linked keeps link order.
type Tag struct {
	ID      TagID
	Text    string
	entries *roaring.Bitmap
	linked  []EntryID
}

// Entries returns the ids of entries carrying the tag, in link order.
func (t *Tag) Entries() []EntryID {
	return slices.Clone(t.linked)
}

// Len returns the number of entries carrying the tag.
func (t *Tag) Len() int {
	return int(t.entries.GetCardinality())
}

// Entry is a tagged file. tags and linked hold the same ids; linked keeps
// the order the tags were declared in.
type Entry struct {
	ID     EntryID
	Path   string
	tags   *roaring.Bitmap
	linked []TagID
}

// Tags returns the ids of the entry's tags, in link order.
func (e *Entry) Tags() []TagID {
	return slices.Clone(e.linked)
}

// Len returns the number of tags on the entry.
func (e *Entry) Len() int {
	return int(e.tags.GetCardinality())
}

// Registry owns every Tag and Entry of one indexing run.
type Registry struct {
	tags        []*Tag
	entries     []*Entry
	tagByText   map[string]TagID
	entryByPath map[string]EntryID
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		tagByText:   make(map[string]TagID),
		entryByPath: make(map[string]EntryID),
	}
}

// NormalizePath returns the canonical spelling used as an entry key.
func NormalizePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

// RegisterTag returns the id of the tag with the given text, creating it if needed.
func (r *Registry) RegisterTag(text string) TagID {
	id, _ := r.registerTag(text)
	return id
}

func (r *Registry) registerTag(text string) (TagID, bool) {
	if id, ok := r.tagByText[text]; ok {
		return id, false
	}
	id := TagID(len(r.tags))
	r.tags = append(r.tags, &Tag{ID: id, Text: text, entries: roaring.New()})
	r.tagByText[text] = id
	return id, true
}

// RegisterEntry returns the id of the entry for path, creating it if needed.
// The path is normalized first, so "./a.txt" and "a.txt" share one entry.
func (r *Registry) RegisterEntry(path string) EntryID {
	id, _ := r.registerEntry(path)
	return id
}

func (r *Registry) registerEntry(path string) (EntryID, bool) {
	path = NormalizePath(path)
	if id, ok := r.entryByPath[path]; ok {
		return id, false
	}
	id := EntryID(len(r.entries))
	r.entries = append(r.entries, &Entry{ID: id, Path: path, tags: roaring.New()})
	r.entryByPath[path] = id
	return id, true
}

// Link records that entry e carries tag t, on both sides. It reports
// whether the link is new.
func (r *Registry) Link(e EntryID, t TagID) bool {
	entry, tag := r.Entry(e), r.Tag(t)
	if entry == nil || tag == nil {
		return false
	}
	if !entry.tags.CheckedAdd(uint32(t)) {
		return false
	}
	entry.linked = append(entry.linked, t)
	tag.entries.Add(uint32(e))
	tag.linked = append(tag.linked, e)
	return true
}

func (r *Registry) unlink(e EntryID, t TagID) {
	if entry := r.Entry(e); entry != nil {
		entry.removeTag(t)
	}
	if tag := r.Tag(t); tag != nil {
		tag.removeEntry(e)
	}
}

func (e *Entry) removeTag(id TagID) {
	if e.tags.CheckedRemove(uint32(id)) {
		e.linked = slices.DeleteFunc(e.linked, func(t TagID) bool { return t == id })
	}
}

func (t *Tag) removeEntry(id EntryID) {
	if t.entries.CheckedRemove(uint32(id)) {
		t.linked = slices.DeleteFunc(t.linked, func(e EntryID) bool { return e == id })
	}
}

func (r *Registry) dropTag(id TagID) {
	tag := r.Tag(id)
	if tag == nil {
		return
	}
	for _, eid := range tag.linked {
		if entry := r.Entry(eid); entry != nil {
			entry.removeTag(id)
		}
	}
	delete(r.tagByText, tag.Text)
	r.tags[id] = nil
}

func (r *Registry) dropEntry(id EntryID) {
	entry := r.Entry(id)
	if entry == nil {
		return
	}
	for _, tid := range entry.linked {
		if tag := r.Tag(tid); tag != nil {
			tag.removeEntry(id)
		}
	}
	delete(r.entryByPath, entry.Path)
	r.entries[id] = nil
}

// Tag returns the tag with the given id, or nil if it does not exist.
func (r *Registry) Tag(id TagID) *Tag {
	if int(id) >= len(r.tags) {
		return nil
	}
	return r.tags[id]
}

// Entry returns the entry with the given id, or nil if it does not exist.
func (r *Registry) Entry(id EntryID) *Entry {
	if int(id) >= len(r.entries) {
		return nil
	}
	return r.entries[id]
}

// LookupTag finds a tag by text.
func (r *Registry) LookupTag(text string) (*Tag, bool) {
	id, ok := r.tagByText[text]
	if !ok {
		return nil, false
	}
	return r.tags[id], true
}

// LookupEntry finds an entry by path. The path is normalized first.
func (r *Registry) LookupEntry(path string) (*Entry, bool) {
	id, ok := r.entryByPath[NormalizePath(path)]
	if !ok {
		return nil, false
	}
	return r.entries[id], true
}

// Tags returns all live tags in id order.
func (r *Registry) Tags() []*Tag {
	out := make([]*Tag, 0, len(r.tagByText))
	for _, tag := range r.tags {
		if tag != nil {
			out = append(out, tag)
		}
	}
	return out
}

// Entries returns all live entries in id order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.entryByPath))
	for _, entry := range r.entries {
		if entry != nil {
			out = append(out, entry)
		}
	}
	return out
}

// TagCount returns the number of live tags.
func (r *Registry) TagCount() int {
	return len(r.tagByText)
}

// EntryCount returns the number of live entries.
func (r *Registry) EntryCount() int {
	return len(r.entryByPath)
}

// TagTexts returns the texts of the entry's tags in link order.
func (r *Registry) TagTexts(e *Entry) []string {
	ids := e.Tags()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if tag := r.Tag(id); tag != nil {
			out = append(out, tag.Text)
		}
	}
	return out
}

// EntryPaths returns the paths of the tag's entries in link order.
func (r *Registry) EntryPaths(t *Tag) []string {
	ids := t.Entries()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if entry := r.Entry(id); entry != nil {
			out = append(out, entry.Path)
		}
	}
	return out
}

// Check verifies the registry invariants: unique tag texts and entry
// paths, symmetric links, no links to removed records, and no entry
// without tags.
func (r *Registry) Check() error {
	texts := make(map[string]TagID, len(r.tags))
	for id, tag := range r.tags {
		if tag == nil {
			continue
		}
		if tag.ID != TagID(id) {
			return fmt.Errorf("tag %q stored at %d has id %d", tag.Text, id, tag.ID)
		}
		if prev, dup := texts[tag.Text]; dup {
			return fmt.Errorf("tag %q registered twice (ids %d and %d)", tag.Text, prev, id)
		}
		texts[tag.Text] = tag.ID
		if uint64(len(tag.linked)) != tag.entries.GetCardinality() {
			return fmt.Errorf("tag %q link order out of sync", tag.Text)
		}
		it := tag.entries.Iterator()
		for it.HasNext() {
			eid := EntryID(it.Next())
			entry := r.Entry(eid)
			if entry == nil {
				return fmt.Errorf("tag %q links removed entry %d", tag.Text, eid)
			}
			if !entry.tags.Contains(uint32(tag.ID)) {
				return fmt.Errorf("tag %q links entry %s without back-link", tag.Text, entry.Path)
			}
		}
	}

	paths := make(map[string]EntryID, len(r.entries))
	for id, entry := range r.entries {
		if entry == nil {
			continue
		}
		if entry.ID != EntryID(id) {
			return fmt.Errorf("entry %s stored at %d has id %d", entry.Path, id, entry.ID)
		}
		if prev, dup := paths[entry.Path]; dup {
			return fmt.Errorf("entry %s registered twice (ids %d and %d)", entry.Path, prev, id)
		}
		paths[entry.Path] = entry.ID
		if entry.tags.IsEmpty() {
			return fmt.Errorf("entry %s has no tags", entry.Path)
		}
		if uint64(len(entry.linked)) != entry.tags.GetCardinality() {
			return fmt.Errorf("entry %s link order out of sync", entry.Path)
		}
		it := entry.tags.Iterator()
		for it.HasNext() {
			tid := TagID(it.Next())
			tag := r.Tag(tid)
			if tag == nil {
				return fmt.Errorf("entry %s links removed tag %d", entry.Path, tid)
			}
			if !tag.entries.Contains(uint32(entry.ID)) {
				return fmt.Errorf("entry %s links tag %q without back-link", entry.Path, tag.Text)
			}
		}
	}

	if len(texts) != len(r.tagByText) || len(paths) != len(r.entryByPath) {
		return fmt.Errorf("lookup tables out of sync (tags %d/%d, entries %d/%d)",
			len(texts), len(r.tagByText), len(paths), len(r.entryByPath))
	}
	return nil
}
