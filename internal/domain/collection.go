package domain

// Collection is the ordered set of links. Insertion order is display order.
type Collection []Link

// Clone returns a copy that shares no title pointers with c.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, l := range c {
		if l.Title != nil {
			l.Title = StringPtr(*l.Title)
		}
		out[i] = l
	}
	return out
}

// IndexOf returns the position of the link with the given id, or -1.
func (c Collection) IndexOf(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the link with the given id.
func (c Collection) Find(id string) (Link, bool) {
	if i := c.IndexOf(id); i >= 0 {
		return c[i], true
	}
	return Link{}, false
}

// SameContent reports whether both collections hold the same links in the
// same order, ignoring timestamps.
func (c Collection) SameContent(o Collection) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if !c[i].SameContent(o[i]) {
			return false
		}
	}
	return true
}

// DuplicateID returns the first id that appears more than once.
func (c Collection) DuplicateID() (string, bool) {
	seen := make(map[string]bool, len(c))
	for _, l := range c {
		if seen[l.ID] {
			return l.ID, true
		}
		seen[l.ID] = true
	}
	return "", false
}
