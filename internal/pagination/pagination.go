// Package pagination tracks the active page of a document.
package pagination

import (
	"fmt"

	"docoverlay/internal/document"
)

// State is a snapshot of the controller.
type State struct {
	Current int
	Total   int
}

// Label renders the host "Page X of Y" text.
func (s State) Label() string {
	return fmt.Sprintf("Page %d of %d", s.Current, s.Total)
}

// Controller is a bounded page counter, 1 <= Current <= Total.
// Total is fixed once per document; Reset starts a new document.
// It is not safe for concurrent use; the viewer serializes access.
type Controller struct {
	current  int
	total    int
	totalSet bool
	onChange func(State)
}

// New returns a controller on page 1 of 1.
func New() *Controller {
	return &Controller{current: 1, total: 1}
}

// OnChange sets a callback invoked after every effective page or total change.
func (c *Controller) OnChange(callback func(State)) {
	c.onChange = callback
}

// State returns the current snapshot.
func (c *Controller) State() State {
	return State{Current: c.current, Total: c.total}
}

// Current returns the active page.
func (c *Controller) Current() int { return c.current }

// Total returns the page count.
func (c *Controller) Total() int { return c.total }

// Label returns "Page X of Y".
func (c *Controller) Label() string { return c.State().Label() }

// Next advances one page unless on the last page.
func (c *Controller) Next() bool {
	if c.current >= c.total {
		return false
	}
	c.current++
	c.notify()
	return true
}

// Previous goes back one page unless on the first page.
func (c *Controller) Previous() bool {
	if c.current <= 1 {
		return false
	}
	c.current--
	c.notify()
	return true
}

// CanNext reports whether Next would move.
func (c *Controller) CanNext() bool { return c.current < c.total }

// CanPrevious reports whether Previous would move.
func (c *Controller) CanPrevious() bool { return c.current > 1 }

// SetTotal records the page count of the current document. Only the first
// call after Reset takes effect; later calls are ignored and return false.
func (c *Controller) SetTotal(total int) bool {
	if c.totalSet || total < 1 {
		return false
	}
	c.totalSet = true
	changed := total != c.total
	c.total = total
	if c.current > total {
		c.current = total
	}
	if changed {
		c.notify()
	}
	return true
}

// Reset prepares for a new document: page 1 of 1, total unset.
func (c *Controller) Reset() {
	changed := c.current != 1 || c.total != 1
	c.current = 1
	c.total = 1
	c.totalSet = false
	if changed {
		c.notify()
	}
}

// Go jumps to page, which must lie in [1, Total].
func (c *Controller) Go(page int) error {
	if page < 1 || page > c.total {
		return document.PageError(page, c.total)
	}
	if page != c.current {
		c.current = page
		c.notify()
	}
	return nil
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.State())
	}
}
