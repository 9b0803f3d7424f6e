package registry

// Stage is a pending registration of one entry. Tags are linked as they
// are added; Commit then keeps the entry or evicts it, unwinding every
// link, tag and entry the stage itself created.
type Stage struct {
	reg  *Registry
	path string

	entry        EntryID
	hasEntry     bool
	createdEntry bool
	createdTags  []TagID
	links        []TagID
	done         bool
}

// Stage starts a registration for path. No entry exists until the first
// tag is added.
func (r *Registry) Stage(path string) *Stage {
	return &Stage{reg: r, path: path}
}

// AddTag registers text and links it to the staged entry, creating the
// entry on first use. Empty text is ignored.
func (s *Stage) AddTag(text string) {
	if s.done || text == "" {
		return
	}
	if !s.hasEntry {
		s.entry, s.createdEntry = s.reg.registerEntry(s.path)
		s.hasEntry = true
	}
	id, created := s.reg.registerTag(text)
	if created {
		s.createdTags = append(s.createdTags, id)
	}
	if s.reg.Link(s.entry, id) {
		s.links = append(s.links, id)
	}
}

// AddTags adds each tag in order.
func (s *Stage) AddTags(texts []string) {
	for _, text := range texts {
		s.AddTag(text)
	}
}

// Commit keeps the staged entry if it has at least one tag and passes
// the filter; otherwise the stage is rolled back. It returns the entry id
// and whether the entry was kept.
func (s *Stage) Commit(filter Filter) (EntryID, bool) {
	if s.done {
		return s.entry, s.hasEntry && s.reg.Entry(s.entry) != nil
	}
	s.done = true
	if !s.hasEntry {
		return 0, false
	}
	entry := s.reg.Entry(s.entry)
	if entry.Len() == 0 || !s.reg.Admits(filter, entry) {
		s.rollback()
		return 0, false
	}
	return s.entry, true
}

// abort rolls the stage back unconditionally.
func (s *Stage) abort() {
	if s.done {
		return
	}
	s.done = true
	if s.hasEntry {
		s.rollback()
	}
}

func (s *Stage) rollback() {
	for _, tag := range s.links {
		s.reg.unlink(s.entry, tag)
	}
	for _, id := range s.createdTags {
		if tag := s.reg.Tag(id); tag != nil && tag.Len() == 0 {
			s.reg.dropTag(id)
		}
	}
	if entry := s.reg.Entry(s.entry); entry != nil && (s.createdEntry || entry.Len() == 0) {
		s.reg.dropEntry(s.entry)
	}
	s.links = nil
	s.createdTags = nil
}
