// Package selection owns the selected and hovered item indices shared by the
// item list and the canvas overlay.
package selection

// Selection is a snapshot of the coordinator. Nil means "none".
type Selection struct {
	Selected *int
	Hovered  *int
}

// IsSelected reports whether index is the selected item.
func (s Selection) IsSelected(index int) bool {
	return s.Selected != nil && *s.Selected == index
}

// IsHovered reports whether index is the hovered item.
func (s Selection) IsHovered(index int) bool {
	return s.Hovered != nil && *s.Hovered == index
}

// Index returns a pointer to a copy of i, for building selections.
func Index(i int) *int {
	return &i
}

// Coordinator is the single source of truth for the selection.
// ToggleSelect, SetHovered and ResetOnDocumentChange are the only mutations.
// It is not safe for concurrent use; the viewer serializes access.
type Coordinator struct {
	selected *int
	hovered  *int
	onChange func(Selection)
}

// New returns a coordinator with nothing selected or hovered.
func New() *Coordinator {
	return &Coordinator{}
}

// OnChange sets a callback invoked after every effective change.
func (c *Coordinator) OnChange(callback func(Selection)) {
	c.onChange = callback
}

// Snapshot returns the current selection. The pointers are copies.
func (c *Coordinator) Snapshot() Selection {
	return Selection{Selected: clone(c.selected), Hovered: clone(c.hovered)}
}

// Selected returns the selected index, or nil.
func (c *Coordinator) Selected() *int { return clone(c.selected) }

// Hovered returns the hovered index, or nil.
func (c *Coordinator) Hovered() *int { return clone(c.hovered) }

// ToggleSelect selects index, or clears the selection if index is already selected.
func (c *Coordinator) ToggleSelect(index int) {
	if c.selected != nil && *c.selected == index {
		c.selected = nil
	} else {
		c.selected = Index(index)
	}
	c.notify()
}

// SetHovered overwrites the hovered index; nil clears it.
func (c *Coordinator) SetHovered(index *int) {
	if equal(c.hovered, index) {
		return
	}
	c.hovered = clone(index)
	c.notify()
}

// ResetOnDocumentChange clears both indices.
func (c *Coordinator) ResetOnDocumentChange() {
	if c.selected == nil && c.hovered == nil {
		return
	}
	c.selected = nil
	c.hovered = nil
	c.notify()
}

func (c *Coordinator) notify() {
	if c.onChange != nil {
		c.onChange(c.Snapshot())
	}
}

func clone(p *int) *int {
	if p == nil {
		return nil
	}
	return Index(*p)
}

func equal(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
