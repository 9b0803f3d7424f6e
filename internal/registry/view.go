package registry

import "github.com/RoaringBitmap/roaring/v2"

// View is a narrowed slice of a registry: the entries carrying every
// selected tag and the tags those entries carry.
type View struct {
	Selected []string
	Unknown  []string
	Entries  []*Entry
	Tags     []*Tag
}

// Narrow intersects the entry sets of the selected tags. With no
// selection every entry and tag is shown. A selected tag that does not
// exist empties the view and is reported in Unknown.
func (r *Registry) Narrow(selected ...string) View {
	view := View{Selected: NewFilter(selected...).Tags()}
	if len(view.Selected) == 0 {
		view.Entries = r.Entries()
		view.Tags = r.Tags()
		return view
	}

	var shown *roaring.Bitmap
	for _, text := range view.Selected {
		tag, ok := r.LookupTag(text)
		if !ok {
			view.Unknown = append(view.Unknown, text)
			shown = roaring.New()
			continue
		}
		if shown == nil {
			shown = tag.entries.Clone()
			continue
		}
		shown.And(tag.entries)
	}

	used := roaring.New()
	it := shown.Iterator()
	for it.HasNext() {
		if entry := r.Entry(EntryID(it.Next())); entry != nil {
			used.Or(entry.tags)
		}
	}

	view.Entries = r.entriesOf(shown)
	view.Tags = r.tagsOf(used)
	return view
}
