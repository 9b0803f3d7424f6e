package registry

import "github.com/RoaringBitmap/roaring/v2"

// Filter is a set of query tags with OR semantics. The zero value admits
// everything.
type Filter struct {
	tags []string
	set  map[string]bool
}

// NewFilter builds a filter from query tags. Empty strings and repeats
// are ignored.
func NewFilter(tags ...string) Filter {
	f := Filter{set: make(map[string]bool, len(tags))}
	for _, tag := range tags {
		if tag == "" || f.set[tag] {
			continue
		}
		f.set[tag] = true
		f.tags = append(f.tags, tag)
	}
	return f
}

// Empty reports whether the filter admits everything.
func (f Filter) Empty() bool {
	return len(f.tags) == 0
}

// Tags returns the query tags in the order given.
func (f Filter) Tags() []string {
	return append([]string(nil), f.tags...)
}

// Match reports whether any of texts is a query tag.
func (f Filter) Match(texts []string) bool {
	if f.Empty() {
		return true
	}
	for _, text := range texts {
		if f.set[text] {
			return true
		}
	}
	return false
}

// Admits reports whether entry passes the filter.
func (r *Registry) Admits(f Filter, entry *Entry) bool {
	if f.Empty() {
		return true
	}
	return f.Match(r.TagTexts(entry))
}

// Select returns the live entries admitted by f, in id order.
func (r *Registry) Select(f Filter) []*Entry {
	if f.Empty() {
		return r.Entries()
	}
	union := roaring.New()
	for _, text := range f.tags {
		if tag, ok := r.LookupTag(text); ok {
			union.Or(tag.entries)
		}
	}
	return r.entriesOf(union)
}

func (r *Registry) entriesOf(ids *roaring.Bitmap) []*Entry {
	out := make([]*Entry, 0, ids.GetCardinality())
	it := ids.Iterator()
	for it.HasNext() {
		if entry := r.Entry(EntryID(it.Next())); entry != nil {
			out = append(out, entry)
		}
	}
	return out
}

func (r *Registry) tagsOf(ids *roaring.Bitmap) []*Tag {
	out := make([]*Tag, 0, ids.GetCardinality())
	it := ids.Iterator()
	for it.HasNext() {
		if tag := r.Tag(TagID(it.Next())); tag != nil {
			out = append(out, tag)
		}
	}
	return out
}
