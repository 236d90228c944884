package catalog

import "sync/atomic"

// Holder publishes the current catalog to concurrent readers. Callers load
// the catalog once per operation and never observe a partially updated one.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder returns a Holder serving c (or the default catalog if c is nil).
func NewHolder(c *Catalog) *Holder {
	if c == nil {
		c = Default()
	}
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Load returns the current catalog.
func (h *Holder) Load() *Catalog {
	return h.current.Load()
}

// Swap replaces the current catalog and returns the previous one.
// A nil catalog is ignored.
func (h *Holder) Swap(c *Catalog) *Catalog {
	if c == nil {
		return h.current.Load()
	}
	return h.current.Swap(c)
}
